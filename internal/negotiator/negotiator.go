package negotiator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/findplayers-dev/findplayers/backend/internal/apiclient"
	"github.com/findplayers-dev/findplayers/backend/internal/domain"
	"github.com/findplayers-dev/findplayers/backend/internal/schedule"
)

type State int

const (
	StateIdle State = iota
	StateSlotsSelected
	StateSubmitting
	StateSucceeded
	StateConflicted
	StateFailed
)

var stateNames = [...]string{"Idle", "SlotsSelected", "Submitting", "Succeeded", "Conflicted", "Failed"}

func (s State) String() string {
	if s < StateIdle || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// SuccessCloseDelay 是成功状态展示给用户的时间，纯粹的体验延迟，不是协议要求
const SuccessCloseDelay = 2 * time.Second

// BookingAPI 是 Negotiator 对外部接口的全部依赖
type BookingAPI interface {
	BusySlots(ctx context.Context, gameName string, recipientUsername string) ([]domain.BusySlot, error)
	CreateGameRequest(ctx context.Context, recipientUsername string, gameName string, suggestedTime string, message string) (*domain.GameRequest, error)
}

// Negotiator 管理一次约玩请求草稿的完整流程：
// 选时段、提交、处理占用冲突、反映成功或失败。
// 所有方法都只会被同一个会话串行地调用，因此不做加锁。
type Negotiator struct {
	api BookingAPI
	now func() time.Time

	senderUsername    string
	recipientUsername string
	gameName          string

	state State
	// customMode 表示接收方没有固定时间表但接受自定义邀请，
	// 此时不需要选时段，用提交时刻代替
	customMode bool
	message    string
	selected   []string
	busy       []domain.BusySlot
	notice     string
	created    []*domain.GameRequest
}

type Option func(*Negotiator)

// WithClock 注入时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(n *Negotiator) {
		n.now = now
	}
}

func New(api BookingAPI, senderUsername string, recipientUsername string, gameName string, opts ...Option) *Negotiator {
	n := &Negotiator{
		api:               api,
		now:               time.Now,
		senderUsername:    senderUsername,
		recipientUsername: recipientUsername,
		gameName:          gameName,
		state:             StateIdle,
		selected:          make([]string, 0),
		created:           make([]*domain.GameRequest, 0),
	}

	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Negotiator) State() State {
	return n.state
}

// Notice 返回应当展示在操作旁边的提示信息，可以为空
func (n *Negotiator) Notice() string {
	return n.notice
}

func (n *Negotiator) SelectedSlots() []string {
	return slices.Clone(n.selected)
}

// CreatedRequests 返回本次草稿成功创建的请求
func (n *Negotiator) CreatedRequests() []*domain.GameRequest {
	return slices.Clone(n.created)
}

func (n *Negotiator) BusySlots() []domain.BusySlot {
	return slices.Clone(n.busy)
}

func (n *Negotiator) IsSlotBusy(key string) bool {
	return schedule.IsSlotBusy(key, n.busy)
}

// LoadMatches 拉取接收方的占用情况并计算双方可约的时段。
// 接收方没有固定时间表但接受自定义邀请时，草稿进入 custom 模式。
func (n *Negotiator) LoadMatches(ctx context.Context, viewer schedule.Grid, recipient schedule.Grid, prefersCustom bool) (*schedule.MatchResult, error) {
	busy, err := n.api.BusySlots(ctx, n.gameName, n.recipientUsername)
	if err != nil {
		return nil, err
	}
	n.busy = busy

	result := schedule.Resolve(viewer, recipient, prefersCustom, busy)
	n.customMode = result.Posture == schedule.PostureOpenToCustom
	return result, nil
}

func (n *Negotiator) SetMessage(message string) {
	n.message = message
}

// SelectSlot 把一个时段加入草稿。已被占用的时段不允许选中。
func (n *Negotiator) SelectSlot(key string) error {
	if n.state == StateSubmitting {
		return &ValidationError{Reason: "提交进行中，不能修改选择"}
	}

	if _, _, err := schedule.ParseSlotKey(key); err != nil {
		return err
	}

	if schedule.IsSlotBusy(key, n.busy) {
		return &ValidationError{Reason: "该时段已被占用"}
	}

	if !slices.Contains(n.selected, key) {
		n.selected = append(n.selected, key)
	}
	n.state = StateSlotsSelected
	return nil
}

func (n *Negotiator) DeselectSlot(key string) {
	if n.state == StateSubmitting {
		return
	}

	n.selected = slices.DeleteFunc(n.selected, func(s string) bool { return s == key })
	if len(n.selected) == 0 && n.state == StateSlotsSelected {
		n.state = StateIdle
	}
}

// Close 丢弃当前草稿。已经发出去的请求不会被撤回，需要单独取消。
func (n *Negotiator) Close() {
	n.state = StateIdle
	n.selected = n.selected[:0]
	n.created = n.created[:0]
	n.message = ""
	n.notice = ""
}

// Submit 执行提交流程。固定的顺序是：刷新占用情况、和当前选择做差集、逐个时段提交。
// 上一次提交还没返回时不允许再次进入。
func (n *Negotiator) Submit(ctx context.Context) error {
	if n.state == StateSubmitting {
		return &ValidationError{Reason: "上一次提交还在进行中"}
	}

	message := strings.TrimSpace(n.message)
	if len([]rune(message)) < 2 {
		n.notice = "请填写至少 2 个字符的留言"
		return &ValidationError{Reason: n.notice}
	}
	if !n.customMode && len(n.selected) == 0 {
		n.notice = "请至少选择一个时段"
		return &ValidationError{Reason: n.notice}
	}

	n.state = StateSubmitting

	if n.customMode {
		// custom 模式不占用任何时段，直接用当前时刻发一条请求
		suggested := n.now().Format(schedule.ISO8601Offset)
		request, err := n.api.CreateGameRequest(ctx, n.recipientUsername, n.gameName, suggested, message)
		if err != nil {
			return n.fail(ctx, err)
		}
		n.created = append(n.created, request)
		n.state = StateSucceeded
		n.notice = "约玩请求已发送"
		return nil
	}

	// 弹窗打开之后占用数据可能已经过期，提交前必须重新拉取一次
	busy, err := n.api.BusySlots(ctx, n.gameName, n.recipientUsername)
	if err != nil {
		return n.fail(ctx, err)
	}
	n.busy = busy

	surviving := make([]string, 0, len(n.selected))
	for _, key := range n.selected {
		if !schedule.IsSlotBusy(key, busy) {
			surviving = append(surviving, key)
		}
	}
	dropped := len(n.selected) - len(surviving)
	n.selected = surviving

	if len(surviving) == 0 {
		n.state = StateConflicted
		n.notice = fmt.Sprintf("选中的 %d 个时段都已被占用，请重新选择", dropped)
		return &StaleAvailabilityError{Unavailable: dropped}
	}

	staleNotice := ""
	if dropped > 0 {
		// 部分时段失效是非致命的，用剩下的继续提交，但要告知用户
		staleNotice = fmt.Sprintf("有 %d 个时段刚刚被占用，已从本次提交中移除。", dropped)
	}

	// 每个时段生成一条独立的请求，接收方可以逐条接受或拒绝
	now := n.now()
	for _, key := range n.selected {
		day, hour, err := schedule.ParseSlotKey(key)
		if err != nil {
			// 数据有问题的时段直接丢弃，不影响其他时段
			continue
		}

		suggested, err := schedule.NextOccurrenceString(day, hour, now)
		if err != nil {
			continue
		}

		request, err := n.api.CreateGameRequest(ctx, n.recipientUsername, n.gameName, suggested, message)
		if err != nil {
			return n.fail(ctx, err)
		}
		n.created = append(n.created, request)
	}

	// 成功后在本地乐观地把订掉的时段标成占用，
	// 下一次从服务端拉取时会用确认后的状态覆盖
	for _, key := range n.selected {
		if day, hour, err := schedule.ParseSlotKey(key); err == nil {
			n.busy = append(n.busy, domain.BusySlot{Day: day.String(), Hour: hour})
		}
	}

	n.state = StateSucceeded
	n.notice = staleNotice + fmt.Sprintf("已发送 %d 条约玩请求", len(n.created))
	return nil
}

// fail 根据错误类型决定进入 Conflicted 还是 Failed，并设置提示信息。
// 任何一类错误都不会自动重试。
func (n *Negotiator) fail(ctx context.Context, err error) error {
	conflictErr := &apiclient.ConflictError{}
	authErr := &apiclient.AuthError{}
	notFoundErr := &apiclient.NotFoundError{}
	serverErr := &apiclient.ServerError{}

	switch {
	case errors.As(err, &conflictErr):
		// 服务端报冲突：刷新占用情况并要求用户重新选择后再提交
		n.state = StateConflicted
		n.refreshBusy(ctx)
		n.notice = conflictErr.Error()
	case errors.As(err, &authErr):
		n.state = StateFailed
		n.notice = authErr.Error()
	case errors.As(err, &notFoundErr):
		n.state = StateFailed
		n.notice = notFoundErr.Error()
	case errors.As(err, &serverErr):
		// 服务端出错时顺手刷新占用情况，尽量让过期的界面状态自愈
		n.state = StateFailed
		n.refreshBusy(ctx)
		n.notice = serverErr.Error()
	default:
		n.state = StateFailed
		n.notice = "发送请求失败，请稍后重试"
	}

	return err
}

// refreshBusy 尽力而为地刷新占用情况，失败时保留旧数据
func (n *Negotiator) refreshBusy(ctx context.Context) {
	if busy, err := n.api.BusySlots(ctx, n.gameName, n.recipientUsername); err == nil {
		n.busy = busy
	}
}
