package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/findplayers-dev/findplayers/backend/internal/domain"
	"github.com/findplayers-dev/findplayers/backend/internal/schedule"
)

// Client 是约玩 API 的客户端。
// http.Client 由调用方显式注入并负责其生命周期，这里不维护任何全局单例。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 先按状态码分类，响应体里的 message 只用来丰富提示
	env := envelope{}
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Message: env.Message}
	case resp.StatusCode == http.StatusConflict:
		return &ConflictError{Message: env.Message}
	case resp.StatusCode >= http.StatusInternalServerError:
		return &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return fmt.Errorf("意外的状态码 %d", resp.StatusCode)
	}

	if decodeErr != nil {
		return decodeErr
	}
	if !env.Success {
		return fmt.Errorf("%s", env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

type availabilityData struct {
	Slots            json.RawMessage `json:"slots"`
	CustomPreference bool            `json:"customPreference"`
}

// FetchAvailability 获取某个玩家的空闲时间表快照。
// 别人的时间表只读，不在本地长期缓存。
// 返回的 slots 兼容新旧两种编码，在这里统一归一化成 Grid。
func (c *Client) FetchAvailability(ctx context.Context, username string) (schedule.Grid, bool, error) {
	path := "/availability/"
	if username != "" {
		path += "?username=" + url.QueryEscape(username)
	}

	data := availabilityData{}
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, false, err
	}

	if len(data.Slots) == 0 {
		return schedule.NewGrid(), data.CustomPreference, nil
	}

	reps, err := schedule.DecodeSlotPayload(data.Slots)
	if err != nil {
		return nil, false, err
	}

	return schedule.FromSlotList(reps), data.CustomPreference, nil
}

// SaveAvailability 整表覆盖保存自己的空闲时间
func (c *Client) SaveAvailability(ctx context.Context, slots []string, isRecurring bool, customPreference bool) error {
	payload := struct {
		Slots            []string `json:"slots"`
		IsRecurring      bool     `json:"is_recurring"`
		CustomPreference bool     `json:"custom_preference"`
	}{
		Slots:            slots,
		IsRecurring:      isRecurring,
		CustomPreference: customPreference,
	}

	return c.do(ctx, http.MethodPost, "/availability/", payload, nil)
}

// BusySlots 查询接收方已被非终态请求占用的时段，这是冲突检测唯一的读依赖
func (c *Client) BusySlots(ctx context.Context, gameName string, recipientUsername string) ([]domain.BusySlot, error) {
	path := fmt.Sprintf("/findplayers/%s?recipient_username=%s",
		url.PathEscape(gameName), url.QueryEscape(recipientUsername))

	busy := make([]domain.BusySlot, 0)
	if err := c.do(ctx, http.MethodGet, path, nil, &busy); err != nil {
		return nil, err
	}
	return busy, nil
}

// CreateGameRequest 创建一条约玩请求。
// suggestedTime 必须是带明确时区偏移的 ISO8601 字符串。
func (c *Client) CreateGameRequest(ctx context.Context, recipientUsername string, gameName string, suggestedTime string, message string) (*domain.GameRequest, error) {
	payload := struct {
		RecipientUsername string `json:"recipient_username"`
		GameName          string `json:"game_name"`
		SuggestedTime     string `json:"suggested_time"`
		Message           string `json:"message"`
	}{
		RecipientUsername: recipientUsername,
		GameName:          gameName,
		SuggestedTime:     suggestedTime,
		Message:           message,
	}

	request := &domain.GameRequest{}
	if err := c.do(ctx, http.MethodPost, "/game_requests/", payload, request); err != nil {
		return nil, err
	}
	return request, nil
}

// ListGameRequests 列出和当前登录用户相关的请求（作为发送方或接收方）
func (c *Client) ListGameRequests(ctx context.Context) ([]*domain.GameRequest, error) {
	requests := make([]*domain.GameRequest, 0)
	if err := c.do(ctx, http.MethodGet, "/game_requests/", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// AnswerGameRequest 接受或拒绝一条收到的请求
func (c *Client) AnswerGameRequest(ctx context.Context, id int64, accept bool) error {
	payload := struct {
		AcceptInvite bool `json:"accept_invite"`
	}{
		AcceptInvite: accept,
	}

	return c.do(ctx, http.MethodPut, fmt.Sprintf("/game_requests/accept_invite/%d", id), payload, nil)
}

// CancelGameRequest 发送方撤回自己的请求
func (c *Client) CancelGameRequest(ctx context.Context, id int64) error {
	payload := struct {
		Status string `json:"status"`
	}{
		Status: string(domain.GameRequestStatusCancelled),
	}

	return c.do(ctx, http.MethodPut, fmt.Sprintf("/game_requests/%d", id), payload, nil)
}
