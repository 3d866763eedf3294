package domain

// AvailabilitySlot 是一个 (星期, 整点) 的循环空闲时段。
// 身份由 (Day, Hour) 决定，只属于一个玩家，保存时整表覆盖，不保留历史。
type AvailabilitySlot struct {
	Day  string `json:"day"`
	Hour string `json:"hour"`
}
