package domain

import "time"

type GameRequestStatus string

const (
	GameRequestStatusPending   GameRequestStatus = "pending"
	GameRequestStatusAccepted  GameRequestStatus = "accepted"
	GameRequestStatusDeclined  GameRequestStatus = "declined"
	GameRequestStatusCancelled GameRequestStatus = "cancelled"
)

// IsTerminal 返回该状态是否为终态，终态的请求除审计字段外不允许再修改
func (s GameRequestStatus) IsTerminal() bool {
	return s == GameRequestStatusAccepted || s == GameRequestStatusDeclined || s == GameRequestStatusCancelled
}

type GameRequest struct {
	ID                int64             `json:"id"`
	SenderUsername    string            `json:"senderUsername"`
	RecipientUsername string            `json:"recipientUsername"`
	GameName          string            `json:"gameName"`
	SuggestedTime     time.Time         `json:"suggestedTime"`
	Message           string            `json:"message"`
	Status            GameRequestStatus `json:"status"`
	CreatedAt         time.Time         `json:"createdAt"`
	Version           int32             `json:"-"`
}

// BusySlot 是从非终态的 GameRequest 推导出来的已占用时段，
// 只按需计算，从不单独落库，避免和请求列表（唯一的事实来源）产生分歧
type BusySlot struct {
	Day  string `json:"day"`
	Hour string `json:"hour"`
}
