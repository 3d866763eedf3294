package schedule

import (
	"fmt"
	"strings"
)

// DayOfWeek 和 time.Weekday 的取值对齐，周日为 0
type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func (d DayOfWeek) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d DayOfWeek) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DayOfWeek(%d)", int(d))
	}
	return dayNames[d]
}

// UnknownDayError 表示时段数据中的星期名称不是七个规范名称之一，
// 调用方应该把这个时段从结果中丢弃，而不是猜测一个
type UnknownDayError struct {
	Day string
}

func (e *UnknownDayError) Error() string {
	return fmt.Sprintf("未知的星期名称: %q", e.Day)
}

// ParseDayOfWeek 对大小写不敏感
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	for i, name := range dayNames {
		if strings.EqualFold(s, name) {
			return DayOfWeek(i), nil
		}
	}
	return 0, &UnknownDayError{Day: s}
}
