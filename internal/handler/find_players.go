package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/findplayers-dev/findplayers/backend/internal/domain"
)

// FindPlayers 返回某个玩家已被非终态约玩请求占用的时段。
// 占用是跨游戏的（人在任何一局里都不能分身），路径里的 game 只为保持接口形状。
// 占用时段每次都从请求列表现算，请求列表是唯一的事实来源。
func (h *Handler) FindPlayers(w http.ResponseWriter, r *http.Request) {
	recipientUsername := r.URL.Query().Get("recipient_username")
	if recipientUsername == "" {
		h.errorResponse(w, r, http.StatusBadRequest, "缺少 recipient_username 参数")
		return
	}

	recipient, err := h.repository.GetUserByUsername(recipientUsername)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusNotFound, "用户不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	times, err := h.repository.GetNonTerminalSuggestedTimes(recipient.Username)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 按 (星期, 小时) 桶去重
	seen := make(map[string]bool)
	busy := make([]domain.BusySlot, 0, len(times))
	for _, t := range times {
		bucket := fmt.Sprintf("%s-%02d", t.Weekday().String(), t.Hour())
		if seen[bucket] {
			continue
		}
		seen[bucket] = true
		busy = append(busy, domain.BusySlot{
			Day:  t.Weekday().String(),
			Hour: t.Format("15:04"),
		})
	}

	h.successResponse(w, r, "获取已占用时段成功", busy)
}
