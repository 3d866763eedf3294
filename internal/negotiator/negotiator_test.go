package negotiator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/findplayers-dev/findplayers/backend/internal/apiclient"
	"github.com/findplayers-dev/findplayers/backend/internal/domain"
	"github.com/findplayers-dev/findplayers/backend/internal/schedule"
)

type createCall struct {
	recipientUsername string
	gameName          string
	suggestedTime     string
	message           string
}

// fakeBookingAPI 按调用次序返回 busyResponses 里的占用列表，
// 用完之后重复返回最后一组
type fakeBookingAPI struct {
	busyResponses [][]domain.BusySlot
	busyErr       error
	busyCalls     int

	createErr error
	creates   []createCall
}

func (f *fakeBookingAPI) BusySlots(_ context.Context, _ string, _ string) ([]domain.BusySlot, error) {
	f.busyCalls++
	if f.busyErr != nil {
		return nil, f.busyErr
	}
	if len(f.busyResponses) == 0 {
		return []domain.BusySlot{}, nil
	}
	index := f.busyCalls - 1
	if index >= len(f.busyResponses) {
		index = len(f.busyResponses) - 1
	}
	return f.busyResponses[index], nil
}

func (f *fakeBookingAPI) CreateGameRequest(_ context.Context, recipientUsername string, gameName string, suggestedTime string, message string) (*domain.GameRequest, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.creates = append(f.creates, createCall{
		recipientUsername: recipientUsername,
		gameName:          gameName,
		suggestedTime:     suggestedTime,
		message:           message,
	})
	return &domain.GameRequest{
		ID:                int64(len(f.creates)),
		SenderUsername:    "zhangwei",
		RecipientUsername: recipientUsername,
		GameName:          gameName,
		Status:            domain.GameRequestStatusPending,
	}, nil
}

var fixedNow = func() time.Time {
	// 2025-09-03 是星期三
	return time.Date(2025, 9, 3, 10, 0, 0, 0, time.FixedZone("UTC+8", 8*60*60))
}

func newTestNegotiator(api BookingAPI) *Negotiator {
	return New(api, "zhangwei", "liqiang", "Apex Legends", WithClock(fixedNow))
}

func TestSubmitRejectsShortMessage(t *testing.T) {
	api := &fakeBookingAPI{}
	n := newTestNegotiator(api)

	if err := n.SelectSlot("Monday-18:00"); err != nil {
		t.Fatalf("SelectSlot 失败: %v", err)
	}
	n.SetMessage("   a   ")

	err := n.Submit(context.Background())
	validationErr := &ValidationError{}
	if !errors.As(err, &validationErr) {
		t.Fatalf("期望 ValidationError，实际 %v", err)
	}
	if len(api.creates) != 0 {
		t.Errorf("校验失败时不应该发出任何请求，实际发了 %d 条", len(api.creates))
	}
	if api.busyCalls != 0 {
		t.Errorf("校验失败时不应该刷新占用情况")
	}
	if n.State() != StateSlotsSelected {
		t.Errorf("校验失败后状态应该保持 SlotsSelected，实际 %v", n.State())
	}
}

func TestSubmitRejectsEmptySelection(t *testing.T) {
	api := &fakeBookingAPI{}
	n := newTestNegotiator(api)
	n.SetMessage("晚上一起打排位吗")

	err := n.Submit(context.Background())
	validationErr := &ValidationError{}
	if !errors.As(err, &validationErr) {
		t.Fatalf("期望 ValidationError，实际 %v", err)
	}
	if len(api.creates) != 0 {
		t.Errorf("没有选时段时不应该发出请求")
	}
}

func TestSubmitSuccess(t *testing.T) {
	api := &fakeBookingAPI{}
	n := newTestNegotiator(api)

	for _, key := range []string{"Friday-21:00", "Monday-18:00"} {
		if err := n.SelectSlot(key); err != nil {
			t.Fatalf("SelectSlot(%s) 失败: %v", key, err)
		}
	}
	n.SetMessage("晚上一起打排位吗")

	if err := n.Submit(context.Background()); err != nil {
		t.Fatalf("Submit 失败: %v", err)
	}

	if n.State() != StateSucceeded {
		t.Errorf("状态 = %v, 期望 StateSucceeded", n.State())
	}
	if len(api.creates) != 2 {
		t.Fatalf("期望发出 2 条请求，实际 %d 条", len(api.creates))
	}
	if len(n.CreatedRequests()) != 2 {
		t.Errorf("CreatedRequests 应该记录 2 条")
	}

	// 每个时段换算成下一次出现的具体时间，带明确的时区偏移
	if got := api.creates[0].suggestedTime; got != "2025-09-05T21:00:00+08:00" {
		t.Errorf("第 1 条请求的时间 = %s", got)
	}
	if got := api.creates[1].suggestedTime; got != "2025-09-08T18:00:00+08:00" {
		t.Errorf("第 2 条请求的时间 = %s", got)
	}
	if api.creates[0].recipientUsername != "liqiang" || api.creates[0].gameName != "Apex Legends" {
		t.Errorf("请求参数错误: %+v", api.creates[0])
	}

	// 成功后本地乐观标记占用
	if !n.IsSlotBusy("Friday-21:00") || !n.IsSlotBusy("Monday-18:00") {
		t.Error("成功后订掉的时段应该被标记为占用")
	}
}

func TestSubmitAllSlotsStale(t *testing.T) {
	api := &fakeBookingAPI{
		busyResponses: [][]domain.BusySlot{
			{{Day: "Monday", Hour: "18:30"}, {Day: "Friday", Hour: "21:00"}},
		},
	}
	n := newTestNegotiator(api)

	for _, key := range []string{"Monday-18:00", "Friday-21:00"} {
		if err := n.SelectSlot(key); err != nil {
			t.Fatalf("SelectSlot(%s) 失败: %v", key, err)
		}
	}
	n.SetMessage("晚上一起打排位吗")

	err := n.Submit(context.Background())
	staleErr := &StaleAvailabilityError{}
	if !errors.As(err, &staleErr) {
		t.Fatalf("期望 StaleAvailabilityError，实际 %v", err)
	}
	if staleErr.Unavailable != 2 {
		t.Errorf("Unavailable = %d, 期望 2", staleErr.Unavailable)
	}
	if n.State() != StateConflicted {
		t.Errorf("状态 = %v, 期望 StateConflicted", n.State())
	}
	if len(api.creates) != 0 {
		t.Errorf("全部时段失效时不应该发出任何请求")
	}
	if !strings.Contains(n.Notice(), "2") {
		t.Errorf("提示应该包含失效数量: %s", n.Notice())
	}
}

func TestSubmitPartialStaleContinues(t *testing.T) {
	api := &fakeBookingAPI{
		busyResponses: [][]domain.BusySlot{
			{{Day: "Monday", Hour: "18:00"}},
		},
	}
	n := newTestNegotiator(api)

	for _, key := range []string{"Monday-18:00", "Friday-21:00"} {
		if err := n.SelectSlot(key); err != nil {
			t.Fatalf("SelectSlot(%s) 失败: %v", key, err)
		}
	}
	n.SetMessage("晚上一起打排位吗")

	if err := n.Submit(context.Background()); err != nil {
		t.Fatalf("部分时段失效时应该继续提交，实际报错: %v", err)
	}

	if n.State() != StateSucceeded {
		t.Errorf("状态 = %v, 期望 StateSucceeded", n.State())
	}
	if len(api.creates) != 1 {
		t.Fatalf("期望只发出 1 条请求，实际 %d 条", len(api.creates))
	}
	if api.creates[0].suggestedTime != "2025-09-05T21:00:00+08:00" {
		t.Errorf("发出的请求应该是存活的那个时段: %s", api.creates[0].suggestedTime)
	}
	if !strings.Contains(n.Notice(), "1 个时段") {
		t.Errorf("提示应该说明有时段被移除: %s", n.Notice())
	}
}

func TestSubmitServerConflict(t *testing.T) {
	api := &fakeBookingAPI{
		busyResponses: [][]domain.BusySlot{
			{}, // 提交前刷新时还没有占用
			{{Day: "Monday", Hour: "18:00"}}, // 冲突后刷新拿到最新占用
		},
		createErr: &apiclient.ConflictError{Message: "该时段刚刚被其他人约走了"},
	}
	n := newTestNegotiator(api)

	if err := n.SelectSlot("Monday-18:00"); err != nil {
		t.Fatalf("SelectSlot 失败: %v", err)
	}
	n.SetMessage("晚上一起打排位吗")

	err := n.Submit(context.Background())
	conflictErr := &apiclient.ConflictError{}
	if !errors.As(err, &conflictErr) {
		t.Fatalf("期望 ConflictError，实际 %v", err)
	}

	if n.State() != StateConflicted {
		t.Errorf("状态 = %v, 期望 StateConflicted", n.State())
	}
	if len(n.CreatedRequests()) != 0 {
		t.Errorf("冲突时不应该留下已创建的请求")
	}
	// 冲突后必须重新拉一次占用情况
	if api.busyCalls != 2 {
		t.Errorf("期望刷新 2 次占用情况，实际 %d 次", api.busyCalls)
	}
	if !n.IsSlotBusy("Monday-18:00") {
		t.Error("刷新后该时段应该显示为占用")
	}
}

func TestSubmitAuthFailure(t *testing.T) {
	api := &fakeBookingAPI{
		createErr: &apiclient.AuthError{StatusCode: 401},
	}
	n := newTestNegotiator(api)

	if err := n.SelectSlot("Monday-18:00"); err != nil {
		t.Fatalf("SelectSlot 失败: %v", err)
	}
	n.SetMessage("晚上一起打排位吗")

	if err := n.Submit(context.Background()); err == nil {
		t.Fatal("期望提交失败")
	}
	if n.State() != StateFailed {
		t.Errorf("状态 = %v, 期望 StateFailed", n.State())
	}
	if !strings.Contains(n.Notice(), "登录") {
		t.Errorf("提示应该引导重新登录: %s", n.Notice())
	}
	// 鉴权失败不触发占用刷新（提交前的那一次除外）
	if api.busyCalls != 1 {
		t.Errorf("期望只刷新 1 次占用情况，实际 %d 次", api.busyCalls)
	}
}

func TestSubmitServerError(t *testing.T) {
	api := &fakeBookingAPI{
		createErr: &apiclient.ServerError{StatusCode: 500},
	}
	n := newTestNegotiator(api)

	if err := n.SelectSlot("Monday-18:00"); err != nil {
		t.Fatalf("SelectSlot 失败: %v", err)
	}
	n.SetMessage("晚上一起打排位吗")

	if err := n.Submit(context.Background()); err == nil {
		t.Fatal("期望提交失败")
	}
	if n.State() != StateFailed {
		t.Errorf("状态 = %v, 期望 StateFailed", n.State())
	}
	// 服务端出错时顺手刷新一次占用情况
	if api.busyCalls != 2 {
		t.Errorf("期望刷新 2 次占用情况，实际 %d 次", api.busyCalls)
	}
}

func TestCustomModeSubmit(t *testing.T) {
	api := &fakeBookingAPI{}
	n := newTestNegotiator(api)

	viewer := schedule.NewGrid()
	_ = viewer.Set(schedule.Monday, "18:00", true)

	result, err := n.LoadMatches(context.Background(), viewer, schedule.NewGrid(), true)
	if err != nil {
		t.Fatalf("LoadMatches 失败: %v", err)
	}
	if result.Posture != schedule.PostureOpenToCustom {
		t.Fatalf("Posture = %v, 期望 PostureOpenToCustom", result.Posture)
	}

	// custom 模式不需要选时段
	n.SetMessage("晚上一起打排位吗")
	if err := n.Submit(context.Background()); err != nil {
		t.Fatalf("Submit 失败: %v", err)
	}

	if n.State() != StateSucceeded {
		t.Errorf("状态 = %v, 期望 StateSucceeded", n.State())
	}
	if len(api.creates) != 1 {
		t.Fatalf("期望发出 1 条请求，实际 %d 条", len(api.creates))
	}
	if got := api.creates[0].suggestedTime; got != "2025-09-03T10:00:00+08:00" {
		t.Errorf("custom 模式应该用提交时刻作为建议时间: %s", got)
	}
}

func TestSelectSlotRejectsBusy(t *testing.T) {
	api := &fakeBookingAPI{
		busyResponses: [][]domain.BusySlot{
			{{Day: "Monday", Hour: "18:30"}},
		},
	}
	n := newTestNegotiator(api)

	viewer := schedule.NewGrid()
	_ = viewer.Set(schedule.Monday, "18:00", true)
	recipient := schedule.NewGrid()
	_ = recipient.Set(schedule.Monday, "18:00", true)

	if _, err := n.LoadMatches(context.Background(), viewer, recipient, false); err != nil {
		t.Fatalf("LoadMatches 失败: %v", err)
	}

	err := n.SelectSlot("Monday-18:00")
	validationErr := &ValidationError{}
	if !errors.As(err, &validationErr) {
		t.Errorf("占用的时段应该拒绝选中，实际 %v", err)
	}
	if len(n.SelectedSlots()) != 0 {
		t.Errorf("拒绝之后不应该留下选中的时段")
	}
}

func TestSelectSlotRejectsMalformedKey(t *testing.T) {
	n := newTestNegotiator(&fakeBookingAPI{})

	if err := n.SelectSlot("Moonday-18:00"); err == nil {
		t.Error("非法的 key 应该被拒绝")
	}
	if err := n.SelectSlot("Monday"); err == nil {
		t.Error("缺少时间的 key 应该被拒绝")
	}
}

func TestDeselectSlot(t *testing.T) {
	n := newTestNegotiator(&fakeBookingAPI{})

	_ = n.SelectSlot("Monday-18:00")
	_ = n.SelectSlot("Friday-21:00")

	n.DeselectSlot("Monday-18:00")
	if got := n.SelectedSlots(); len(got) != 1 || got[0] != "Friday-21:00" {
		t.Errorf("SelectedSlots = %v", got)
	}

	n.DeselectSlot("Friday-21:00")
	if n.State() != StateIdle {
		t.Errorf("取消全部选择后状态应该回到 Idle，实际 %v", n.State())
	}
}

func TestCloseDiscardsDraft(t *testing.T) {
	n := newTestNegotiator(&fakeBookingAPI{})

	_ = n.SelectSlot("Monday-18:00")
	n.SetMessage("晚上一起打排位吗")
	n.Close()

	if n.State() != StateIdle {
		t.Errorf("Close 后状态应该是 Idle，实际 %v", n.State())
	}
	if len(n.SelectedSlots()) != 0 || n.Notice() != "" {
		t.Error("Close 后草稿应该被清空")
	}
}

func TestSubmitBusyFetchFailure(t *testing.T) {
	api := &fakeBookingAPI{
		busyErr: &apiclient.ServerError{StatusCode: 502},
	}
	n := newTestNegotiator(api)

	if err := n.SelectSlot("Monday-18:00"); err != nil {
		t.Fatalf("SelectSlot 失败: %v", err)
	}
	n.SetMessage("晚上一起打排位吗")

	if err := n.Submit(context.Background()); err == nil {
		t.Fatal("期望提交失败")
	}
	if n.State() != StateFailed {
		t.Errorf("状态 = %v, 期望 StateFailed", n.State())
	}
	if len(api.creates) != 0 {
		t.Errorf("占用刷新失败时不应该发出请求")
	}
}
