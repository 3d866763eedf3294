package negotiator

import "fmt"

// ValidationError 表示提交前的本地校验失败（没有选时段、留言为空等），
// 请求不会被发到服务端
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StaleAvailabilityError 表示从打开弹窗到点提交之间，选中的时段被别的请求占用了。
// 只有全部时段都失效时提交才会中止，部分失效会用剩下的时段继续
type StaleAvailabilityError struct {
	Unavailable int
}

func (e *StaleAvailabilityError) Error() string {
	return fmt.Sprintf("有 %d 个选中的时段已被占用", e.Unavailable)
}
