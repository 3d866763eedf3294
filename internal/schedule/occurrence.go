package schedule

import (
	"time"
)

// ISO8601Offset 序列化时必须带上明确的数字时区偏移，
// 本地偏移要在序列化的时候就确定下来，不能留到读取的时候再猜
const ISO8601Offset = "2006-01-02T15:04:05-07:00"

// NextOccurrence 把 (星期, HH:MM) 形式的循环时段换算成下一次出现的具体时间。
// 如果本周的这个时刻已经过去（包括恰好等于 now），则顺延到下周，
// 保证返回值一定严格晚于 now。
func NextOccurrence(day DayOfWeek, hour string, now time.Time) (time.Time, error) {
	if !day.Valid() {
		return time.Time{}, &UnknownDayError{Day: day.String()}
	}

	h, m, err := parseHourMinute(hour)
	if err != nil {
		return time.Time{}, err
	}

	daysUntil := (int(day) - int(now.Weekday()) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day()+daysUntil, h, m, 0, 0, now.Location())

	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}

	return candidate, nil
}

// NextOccurrenceString 返回带明确时区偏移的 ISO8601 字符串
func NextOccurrenceString(day DayOfWeek, hour string, now time.Time) (string, error) {
	t, err := NextOccurrence(day, hour, now)
	if err != nil {
		return "", err
	}
	return t.Format(ISO8601Offset), nil
}
