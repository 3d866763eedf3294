package apiclient

import (
	"fmt"
	"net/http"
)

// 服务端的状态码在这里被翻译成类型化的错误，
// negotiator 根据错误类型决定进入哪个状态，不在字符串上做匹配

// ConflictError 对应 409，表示选中的时段在提交前已被别的请求占用
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "该时段已被其他请求占用"
}

// AuthError 对应 401 和 403
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	if e.StatusCode == http.StatusForbidden {
		return "没有权限执行该操作"
	}
	return "登录已过期，请重新登录"
}

// NotFoundError 对应 404，比如接收方账号已被删除，对当前草稿而言是终态
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "请求的资源不存在"
}

// ServerError 对应 5xx
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("服务器错误 (%d)，请稍后重试", e.StatusCode)
}
