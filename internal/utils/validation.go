package utils

import (
	"errors"
	"strings"
)

// ValidateRequestMessage 检查约玩留言，去掉首尾空白后至少要有 2 个字符
func ValidateRequestMessage(message string) error {
	if len([]rune(strings.TrimSpace(message))) < 2 {
		return errors.New("留言太短，至少需要 2 个字符")
	}
	return nil
}
