package schedule

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestGridSetGet(t *testing.T) {
	grid := NewGrid()

	if err := grid.Set(Monday, "09:00", true); err != nil {
		t.Fatalf("Set 失败: %v", err)
	}
	if !grid.Get(Monday, "09:00") {
		t.Error("期望 Monday-09:00 为 true")
	}
	if grid.Get(Monday, "10:00") {
		t.Error("未设置的时段应该为 false")
	}

	// 设置为 false 应该把 key 从稀疏表示中删除
	if err := grid.Set(Monday, "09:00", false); err != nil {
		t.Fatalf("Set 失败: %v", err)
	}
	if len(grid) != 0 {
		t.Errorf("期望 grid 为空，实际有 %d 个 key", len(grid))
	}
}

func TestGridSetRejectsMalformed(t *testing.T) {
	grid := NewGrid()

	if err := grid.Set(Monday, "24:00", true); err == nil {
		t.Error("小时 24 应该被拒绝")
	}
	if err := grid.Set(Monday, "9:00", true); err == nil {
		t.Error("不补零的小时应该被拒绝")
	}
	if err := grid.Set(DayOfWeek(7), "09:00", true); err == nil {
		t.Error("越界的星期应该被拒绝")
	}
}

func TestGridClear(t *testing.T) {
	grid := NewGrid()
	_ = grid.Set(Monday, "09:00", true)
	_ = grid.Set(Friday, "21:00", true)

	grid.Clear()
	if len(grid.ToSlotList()) != 0 {
		t.Error("Clear 之后不应该还有时段")
	}
}

func TestToSlotListSorted(t *testing.T) {
	grid := NewGrid()
	_ = grid.Set(Friday, "21:00", true)
	_ = grid.Set(Sunday, "23:00", true)
	_ = grid.Set(Monday, "09:00", true)
	_ = grid.Set(Monday, "08:00", true)

	want := []string{"Sunday-23:00", "Monday-08:00", "Monday-09:00", "Friday-21:00"}
	if got := grid.ToSlotList(); !reflect.DeepEqual(got, want) {
		t.Errorf("ToSlotList() = %v, 期望 %v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	grid := NewGrid()
	_ = grid.Set(Monday, "18:00", true)
	_ = grid.Set(Wednesday, "09:00", true)
	_ = grid.Set(Saturday, "22:00", true)

	reps := make([]SlotRepresentation, 0)
	for _, key := range grid.ToSlotList() {
		reps = append(reps, KeyedBooleanSlot{Key: key})
	}

	restored := FromSlotList(reps)
	if !grid.Equal(restored) || !restored.Equal(grid) {
		t.Errorf("round-trip 之后的 grid 不相等: %v vs %v", grid.ToSlotList(), restored.ToSlotList())
	}
}

func TestFromSlotListLegacyRange(t *testing.T) {
	tests := []struct {
		name string
		slot LegacyRangeSlot
		want []string
	}{
		{
			name: "整点区间",
			slot: LegacyRangeSlot{DayOfWeek: "Monday", StartTime: "09:00", EndTime: "12:00"},
			want: []string{"Monday-09:00", "Monday-10:00", "Monday-11:00"},
		},
		{
			name: "结束时间带分钟时多算一个小时",
			slot: LegacyRangeSlot{DayOfWeek: "Tuesday", StartTime: "18:00", EndTime: "19:30"},
			want: []string{"Tuesday-18:00", "Tuesday-19:00"},
		},
		{
			name: "到当天结束",
			slot: LegacyRangeSlot{DayOfWeek: "Friday", StartTime: "22:00", EndTime: "24:00"},
			want: []string{"Friday-22:00", "Friday-23:00"},
		},
		{
			name: "星期名称大小写不敏感",
			slot: LegacyRangeSlot{DayOfWeek: "saturday", StartTime: "10:00", EndTime: "11:00"},
			want: []string{"Saturday-10:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := FromSlotList([]SlotRepresentation{tt.slot})
			if got := grid.ToSlotList(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FromSlotList() = %v, 期望 %v", got, tt.want)
			}
		})
	}
}

func TestFromSlotListDropsMalformed(t *testing.T) {
	reps := []SlotRepresentation{
		KeyedBooleanSlot{Key: "Monday-18:00"},
		KeyedBooleanSlot{Key: "Moonday-18:00"}, // 未知的星期，应该被丢弃
		KeyedBooleanSlot{Key: "Monday-25:00"},  // 非法小时，应该被丢弃
		LegacyRangeSlot{DayOfWeek: "Nowhere", StartTime: "09:00", EndTime: "10:00"},
	}

	grid := FromSlotList(reps)
	want := []string{"Monday-18:00"}
	if got := grid.ToSlotList(); !reflect.DeepEqual(got, want) {
		t.Errorf("FromSlotList() = %v, 期望 %v", got, want)
	}
}

func TestDecodeSlotPayload(t *testing.T) {
	raw := json.RawMessage(`["Monday-09:00", {"day_of_week": "Tuesday", "start_time": "18:00", "end_time": "20:00"}]`)

	reps, err := DecodeSlotPayload(raw)
	if err != nil {
		t.Fatalf("DecodeSlotPayload 失败: %v", err)
	}
	if len(reps) != 2 {
		t.Fatalf("期望 2 个元素，实际 %d 个", len(reps))
	}

	if keyed, ok := reps[0].(KeyedBooleanSlot); !ok || keyed.Key != "Monday-09:00" {
		t.Errorf("第 1 个元素解析错误: %+v", reps[0])
	}
	if rangeSlot, ok := reps[1].(LegacyRangeSlot); !ok || rangeSlot.DayOfWeek != "Tuesday" || rangeSlot.StartTime != "18:00" || rangeSlot.EndTime != "20:00" {
		t.Errorf("第 2 个元素解析错误: %+v", reps[1])
	}
}

func TestDecodeSlotPayloadRejectsOtherShapes(t *testing.T) {
	if _, err := DecodeSlotPayload(json.RawMessage(`{"not": "an array"}`)); err == nil {
		t.Error("非数组应该报错")
	}
	if _, err := DecodeSlotPayload(json.RawMessage(`[42]`)); err == nil {
		t.Error("数字元素应该报错")
	}
}

func TestParseDayOfWeek(t *testing.T) {
	day, err := ParseDayOfWeek("WEDNESDAY")
	if err != nil || day != Wednesday {
		t.Errorf("ParseDayOfWeek(WEDNESDAY) = %v, %v", day, err)
	}

	_, err = ParseDayOfWeek("Moonday")
	unknownErr := &UnknownDayError{}
	if !errors.As(err, &unknownErr) {
		t.Errorf("期望 UnknownDayError，实际 %v", err)
	}
}
