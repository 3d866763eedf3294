package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/findplayers-dev/findplayers/backend/internal/domain"
	"github.com/findplayers-dev/findplayers/backend/internal/schedule"
	"github.com/findplayers-dev/findplayers/backend/internal/utils"
)

// holdKey 是预订过程中的短时互斥锁的 redis key，
// 覆盖查重和落库之间的窗口，防止两个人同时订走同一个时段
func holdKey(recipientUsername string, t time.Time) string {
	return fmt.Sprintf("hold_%s_%s_%02d", recipientUsername, t.Weekday().String(), t.Hour())
}

func (h *Handler) CreateGameRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		RecipientUsername string `json:"recipient_username" validate:"required"`
		GameName          string `json:"game_name" validate:"required"`
		SuggestedTime     string `json:"suggested_time" validate:"required"`
		Message           string `json:"message" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateRequestMessage(req.Message); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.RecipientUsername == myInfo.Username {
		h.errorResponse(w, r, http.StatusBadRequest, "不能给自己发约玩请求")
		return
	}

	// 约定时间必须带明确的时区偏移
	suggestedTime, err := time.Parse(time.RFC3339, req.SuggestedTime)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "约定时间格式错误")
		return
	}

	recipient, err := h.repository.GetUserByUsername(req.RecipientUsername)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusNotFound, "接收方不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 同一个接收方同一个 (星期, 小时) 桶里只允许一条非终态请求
	busyTimes, err := h.repository.GetNonTerminalSuggestedTimes(recipient.Username)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	for _, t := range busyTimes {
		if t.Weekday() == suggestedTime.Weekday() && t.Hour() == suggestedTime.Hour() {
			h.errorResponse(w, r, http.StatusConflict, "该时段已被其他约玩请求占用")
			return
		}
	}

	// 用 redis 短时锁封住查重和落库之间的窗口
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	acquired, err := h.redisClient.SetNX(ctx, holdKey(recipient.Username, suggestedTime), myInfo.Username,
		time.Duration(h.config.SlotHold.Expiration)*time.Second).Result()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !acquired {
		h.errorResponse(w, r, http.StatusConflict, "该时段正在被其他人预订，请稍后再试")
		return
	}

	request := &domain.GameRequest{
		SenderUsername:    myInfo.Username,
		RecipientUsername: recipient.Username,
		GameName:          req.GameName,
		SuggestedTime:     suggestedTime,
		Message:           req.Message,
	}

	if err := h.repository.CreateGameRequest(request); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "game_requests_sender_username_fkey", "game_requests_recipient_username_fkey":
				h.errorResponse(w, r, http.StatusNotFound, "用户不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.notify(domain.MailMessage{
		Type: "game_request_created",
		To:   recipient.Email,
		Data: domain.GameRequestCreatedMailData{
			RecipientName: recipient.DisplayName,
			SenderName:    myInfo.DisplayName,
			GameName:      request.GameName,
			SuggestedTime: request.SuggestedTime.Format(schedule.ISO8601Offset),
			Message:       request.Message,
		},
	})

	h.createdResponse(w, r, "约玩请求已发送", request)
}

func (h *Handler) ListGameRequests(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	requests, err := h.repository.GetGameRequestsByUsername(myInfo.Username)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取约玩请求列表成功", requests)
}

// AnswerGameRequest 由接收方接受或拒绝一条待处理的请求
func (h *Handler) AnswerGameRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	request := r.Context().Value(GameRequestCtx).(*domain.GameRequest)

	if request.RecipientUsername != myInfo.Username {
		h.errorResponse(w, r, http.StatusForbidden, "只有接收方才能处理该请求")
		return
	}

	// 终态的请求不允许再改
	if request.Status.IsTerminal() {
		h.errorResponse(w, r, http.StatusConflict, "该请求已处理完毕")
		return
	}

	var req struct {
		AcceptInvite *bool `json:"accept_invite" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	mailType := "game_request_accepted"
	request.Status = domain.GameRequestStatusAccepted
	if !*req.AcceptInvite {
		mailType = "game_request_declined"
		request.Status = domain.GameRequestStatusDeclined
	}

	if err := h.repository.UpdateGameRequestStatus(request); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusConflict, "请求已被修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	sender, err := h.repository.GetUserByUsername(request.SenderUsername)
	if err == nil {
		h.notify(domain.MailMessage{
			Type: mailType,
			To:   sender.Email,
			Data: domain.GameRequestAnsweredMailData{
				SenderName:    sender.DisplayName,
				RecipientName: myInfo.DisplayName,
				GameName:      request.GameName,
				SuggestedTime: request.SuggestedTime.Format(schedule.ISO8601Offset),
			},
		})
	}

	h.successResponse(w, r, "处理约玩请求成功", request)
}

// CancelGameRequest 由发送方撤回自己的待处理请求
func (h *Handler) CancelGameRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	request := r.Context().Value(GameRequestCtx).(*domain.GameRequest)

	if request.SenderUsername != myInfo.Username {
		h.errorResponse(w, r, http.StatusForbidden, "只有发送方才能取消该请求")
		return
	}

	if request.Status.IsTerminal() {
		h.errorResponse(w, r, http.StatusConflict, "该请求已处理完毕")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=cancelled"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	request.Status = domain.GameRequestStatusCancelled

	if err := h.repository.UpdateGameRequestStatus(request); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, http.StatusConflict, "请求已被修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	recipient, err := h.repository.GetUserByUsername(request.RecipientUsername)
	if err == nil {
		h.notify(domain.MailMessage{
			Type: "game_request_cancelled",
			To:   recipient.Email,
			Data: domain.GameRequestCancelledMailData{
				RecipientName: recipient.DisplayName,
				SenderName:    myInfo.DisplayName,
				GameName:      request.GameName,
				SuggestedTime: request.SuggestedTime.Format(schedule.ISO8601Offset),
			},
		})
	}

	h.successResponse(w, r, "取消约玩请求成功", request)
}
