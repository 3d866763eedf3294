package schedule

import (
	"github.com/findplayers-dev/findplayers/backend/internal/domain"
)

// Posture 是接收方时间表的三种状态：有固定时间表、没有时间表但接受自定义邀请、
// 没有时间表也不接受邀请。后两种不能被简化成"空的时间表"一种情况。
type Posture int

const (
	PostureFixedSchedule Posture = iota
	PostureOpenToCustom
	PostureClosed
)

type MatchedSlot struct {
	Key    string `json:"key"`
	IsBusy bool   `json:"isBusy"`
}

type MatchResult struct {
	Posture Posture       `json:"posture"`
	Slots   []MatchedSlot `json:"slots"`
}

// ComputeMatches 返回两张时间表都为 true 的 slot key 集合，结果按星期和时间排序。
// 交集运算满足交换律：ComputeMatches(a, b) 和 ComputeMatches(b, a) 一致。
func ComputeMatches(a, b Grid) []string {
	matches := make([]string, 0)
	for key, available := range a {
		if available && b[key] {
			matches = append(matches, key)
		}
	}

	sortSlotKeys(matches)
	return matches
}

// MarkBusy 给每个匹配到的时段打上是否已被占用的标记。
// 占用判断故意做得很粗：星期相同且小时相同就算同一个时段，分钟不参与比较。
func MarkBusy(matched []string, busy []domain.BusySlot) []MatchedSlot {
	slots := make([]MatchedSlot, 0, len(matched))
	for _, key := range matched {
		slots = append(slots, MatchedSlot{
			Key:    key,
			IsBusy: IsSlotBusy(key, busy),
		})
	}
	return slots
}

// IsSlotBusy 判断某个 slot key 是否和任意一个已占用时段落在同一个小时桶里
func IsSlotBusy(key string, busy []domain.BusySlot) bool {
	day, hour, err := ParseSlotKey(key)
	if err != nil {
		return false
	}

	slotHour, _, err := parseHourMinute(hour)
	if err != nil {
		return false
	}

	for _, b := range busy {
		busyDay, err := ParseDayOfWeek(b.Day)
		if err != nil {
			continue
		}
		if busyDay != day {
			continue
		}

		busyHour, _, err := parseHourMinute(b.Hour)
		if err != nil {
			continue
		}
		if busyHour == slotHour {
			return true
		}
	}

	return false
}

// Resolve 计算双方可约的时段。
// 当接收方没有任何固定空闲时间时必须跳过交集计算，
// 直接根据 prefersCustom 报告"接受自定义邀请"或"不可约"。
// 注意这一层不做任何时区换算，两张时间表都按各自的本地钟点理解。
func Resolve(viewer, recipient Grid, prefersCustom bool, busy []domain.BusySlot) *MatchResult {
	if len(recipient.ToSlotList()) == 0 {
		if prefersCustom {
			return &MatchResult{Posture: PostureOpenToCustom, Slots: []MatchedSlot{}}
		}
		return &MatchResult{Posture: PostureClosed, Slots: []MatchedSlot{}}
	}

	matches := ComputeMatches(viewer, recipient)
	return &MatchResult{
		Posture: PostureFixedSchedule,
		Slots:   MarkBusy(matches, busy),
	}
}
