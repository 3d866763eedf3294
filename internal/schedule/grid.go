package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Grid 是一个玩家的每周循环空闲时间表，key 形如 "Monday-09:00"。
// 采用稀疏表示，缺失的 key 等价于 false。
// Grid 只会在单个会话内被串行修改，因此不做任何加锁。
type Grid map[string]bool

func NewGrid() Grid {
	return make(Grid)
}

// parseHourMinute 解析 "HH:MM"，HH 必须在 [00, 23] 之间
func parseHourMinute(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("时间格式错误: %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("小时超出范围: %q", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("分钟超出范围: %q", s)
	}

	return hour, minute, nil
}

func FormatSlotKey(day DayOfWeek, hour string) string {
	return day.String() + "-" + hour
}

// ParseSlotKey 把 "Monday-09:00" 拆成星期和时间，两部分都会被校验
func ParseSlotKey(key string) (DayOfWeek, string, error) {
	dayPart, hourPart, found := strings.Cut(key, "-")
	if !found {
		return 0, "", fmt.Errorf("时段 key 格式错误: %q", key)
	}

	day, err := ParseDayOfWeek(dayPart)
	if err != nil {
		return 0, "", err
	}

	if _, _, err := parseHourMinute(hourPart); err != nil {
		return 0, "", err
	}

	return day, hourPart, nil
}

func (g Grid) Set(day DayOfWeek, hour string, available bool) error {
	if !day.Valid() {
		return &UnknownDayError{Day: day.String()}
	}
	if _, _, err := parseHourMinute(hour); err != nil {
		return err
	}

	key := FormatSlotKey(day, hour)
	if available {
		g[key] = true
	} else {
		// 稀疏表示下 false 不落入 map，保证 Equal 和 round-trip 的语义
		delete(g, key)
	}
	return nil
}

func (g Grid) Get(day DayOfWeek, hour string) bool {
	return g[FormatSlotKey(day, hour)]
}

func (g Grid) Clear() {
	for key := range g {
		delete(g, key)
	}
}

// ToSlotList 只输出为 true 的时段，按星期和时间排序
func (g Grid) ToSlotList() []string {
	keys := make([]string, 0, len(g))
	for key, available := range g {
		if available {
			keys = append(keys, key)
		}
	}

	sortSlotKeys(keys)
	return keys
}

// Equal 是稀疏意义上的相等：只比较为 true 的时段
func (g Grid) Equal(other Grid) bool {
	count := 0
	for key, available := range g {
		if !available {
			continue
		}
		if !other[key] {
			return false
		}
		count++
	}

	otherCount := 0
	for _, available := range other {
		if available {
			otherCount++
		}
	}

	return count == otherCount
}

// sortSlotKeys 按 (星期, 时间) 排序，无法解析的 key 排在最后
func sortSlotKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		di, hi, erri := ParseSlotKey(keys[i])
		dj, hj, errj := ParseSlotKey(keys[j])
		if erri != nil || errj != nil {
			return keys[i] < keys[j]
		}
		if di != dj {
			return di < dj
		}
		return hi < hj
	})
}
