package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/findplayers-dev/findplayers/backend/internal/domain"
	"github.com/findplayers-dev/findplayers/backend/internal/schedule"
)

type availabilityData struct {
	Slots            []string `json:"slots"`
	CustomPreference bool     `json:"customPreference"`
}

// GetAvailability 返回某个玩家的空闲时间表。
// 不带 username 参数时返回自己的，带上时返回对方的只读快照。
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	target := myInfo
	if username := r.URL.Query().Get("username"); username != "" && username != myInfo.Username {
		user, err := h.repository.GetUserByUsername(username)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, http.StatusNotFound, "用户不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		target = user
	}

	slots, err := h.repository.GetAvailabilityByUserID(target.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	data := availabilityData{
		Slots:            make([]string, 0, len(slots)),
		CustomPreference: target.PrefersCustomAvailability,
	}
	for _, slot := range slots {
		day, err := schedule.ParseDayOfWeek(slot.Day)
		if err != nil {
			// 脏数据不往外吐，直接丢掉这个时段
			continue
		}
		data.Slots = append(data.Slots, schedule.FormatSlotKey(day, slot.Hour))
	}

	h.successResponse(w, r, "获取空闲时间成功", data)
}

// SaveAvailability 整表覆盖保存自己的空闲时间。
// slots 数组兼容两代编码："Day-HH:MM" 字符串和 {day_of_week, start_time, end_time} 区间对象。
func (h *Handler) SaveAvailability(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Slots            json.RawMessage `json:"slots" validate:"required"`
		IsRecurring      bool            `json:"is_recurring"`
		CustomPreference *bool           `json:"custom_preference"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	reps, err := schedule.DecodeSlotPayload(req.Slots)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	grid := schedule.FromSlotList(reps)
	keys := grid.ToSlotList()

	slots := make([]domain.AvailabilitySlot, 0, len(keys))
	for _, key := range keys {
		day, hour, err := schedule.ParseSlotKey(key)
		if err != nil {
			continue
		}
		slots = append(slots, domain.AvailabilitySlot{Day: day.String(), Hour: hour})
	}

	if err := h.repository.ReplaceAvailability(myInfo.ID, slots); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 同一个表单里可以顺带更新"接受自定义邀请"的偏好
	if req.CustomPreference != nil && *req.CustomPreference != myInfo.PrefersCustomAvailability {
		myInfo.PrefersCustomAvailability = *req.CustomPreference
		if err := h.repository.UpdateUser(myInfo); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, http.StatusConflict, "个人信息已被修改，请重试")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	h.successResponse(w, r, "保存空闲时间成功", availabilityData{
		Slots:            keys,
		CustomPreference: myInfo.PrefersCustomAvailability,
	})
}
