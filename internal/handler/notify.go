package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/findplayers-dev/findplayers/backend/internal/domain"
)

// notify 把通知邮件发到消息队列。
// 通知只是尽力而为，失败不能影响约玩请求本身的处理结果，因此只记录日志。
func (h *Handler) notify(message domain.MailMessage) {
	mailData, err := json.Marshal(message)
	if err != nil {
		slog.Error("无法序列化通知邮件", "type", message.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"notification_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		slog.Error("无法发送通知邮件到队列", "type", message.Type, "error", err)
	}
}
