package schedule

import (
	"encoding/json"
	"fmt"
)

// 空闲时段在接口边界上有两代编码：
// 新编码是整个 "Day-HH:MM" 字符串，旧编码是一个跨多个小时的区间对象。
// 这里用带标签的联合类型在边界上一次性归一化，
// 避免各个使用方自己去嗅探格式。

type SlotRepresentation interface {
	slotRepresentation()
}

// KeyedBooleanSlot 是新编码，一个 key 对应一个小时的时段
type KeyedBooleanSlot struct {
	Key string
}

func (KeyedBooleanSlot) slotRepresentation() {}

// LegacyRangeSlot 是旧编码，表示 [StartTime, EndTime) 的连续区间，
// 归一化时会被展开成每小时一个时段
type LegacyRangeSlot struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (LegacyRangeSlot) slotRepresentation() {}

// DecodeSlotPayload 解析空闲时间接口返回的 slots 数组，
// 数组元素既可能是字符串也可能是区间对象，两种可以混用
func DecodeSlotPayload(raw json.RawMessage) ([]SlotRepresentation, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, fmt.Errorf("slots 不是数组: %w", err)
	}

	reps := make([]SlotRepresentation, 0, len(elements))
	for i, element := range elements {
		if len(element) == 0 {
			return nil, fmt.Errorf("slots 第 %d 项为空", i+1)
		}

		switch element[0] {
		case '"':
			var key string
			if err := json.Unmarshal(element, &key); err != nil {
				return nil, err
			}
			reps = append(reps, KeyedBooleanSlot{Key: key})
		case '{':
			var rangeSlot LegacyRangeSlot
			if err := json.Unmarshal(element, &rangeSlot); err != nil {
				return nil, err
			}
			reps = append(reps, rangeSlot)
		default:
			return nil, fmt.Errorf("slots 第 %d 项既不是字符串也不是对象", i+1)
		}
	}

	return reps, nil
}

// FromSlotList 把归一化后的时段列表装配成 Grid。
// 无法解析的时段（星期名称未知、时间格式错误）会被直接丢弃而不是中断整个流程。
func FromSlotList(reps []SlotRepresentation) Grid {
	grid := NewGrid()

	for _, rep := range reps {
		switch slot := rep.(type) {
		case KeyedBooleanSlot:
			day, hour, err := ParseSlotKey(slot.Key)
			if err != nil {
				continue
			}
			grid[FormatSlotKey(day, hour)] = true
		case LegacyRangeSlot:
			day, err := ParseDayOfWeek(slot.DayOfWeek)
			if err != nil {
				continue
			}

			startHour, _, err := parseHourMinute(slot.StartTime)
			if err != nil {
				continue
			}

			endHour, err := rangeEndHour(slot.EndTime)
			if err != nil {
				continue
			}

			// 区间右端开放，按整点展开
			for h := startHour; h < endHour; h++ {
				grid[FormatSlotKey(day, fmt.Sprintf("%02d:00", h))] = true
			}
		}
	}

	return grid
}

// rangeEndHour 计算区间展开的终止小时（不含）。
// 旧数据允许用 "24:00" 表示到当天结束，结束时间带分钟时多算一个小时。
func rangeEndHour(endTime string) (int, error) {
	if endTime == "24:00" {
		return 24, nil
	}

	hour, minute, err := parseHourMinute(endTime)
	if err != nil {
		return 0, err
	}
	if minute > 0 {
		hour++
	}
	return hour, nil
}
