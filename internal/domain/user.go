package domain

import (
	"time"
)

type Role string

const (
	RolePlayer Role = "玩家"
	RoleAdmin  Role = "管理员"
)

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	DisplayName  string `json:"displayName"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	// PrefersCustomAvailability 表示玩家没有填写固定空闲时间时，是否仍然接受别人直接约时间
	PrefersCustomAvailability bool      `json:"prefersCustomAvailability"`
	IsActive                  bool      `json:"isActive"`
	CreatedAt                 time.Time `json:"createdAt"`
	Version                   int32     `json:"-"`
}
