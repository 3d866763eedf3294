package repository

import (
	"context"
	"time"

	"github.com/findplayers-dev/findplayers/backend/internal/domain"
)

func (r *Repository) CreateGameRequest(request *domain.GameRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO game_requests (sender_username, recipient_username, game_name, suggested_time, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, status, created_at, version
	`

	args := []any{request.SenderUsername, request.RecipientUsername, request.GameName, request.SuggestedTime, request.Message}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&request.ID, &request.Status, &request.CreatedAt, &request.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetGameRequestByID(id int64) (*domain.GameRequest, error) {
	query := `
		SELECT sender_username, recipient_username, game_name, suggested_time, message, status, created_at, version
		FROM game_requests WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	request := &domain.GameRequest{
		ID: id,
	}

	dst := []any{&request.SenderUsername, &request.RecipientUsername, &request.GameName, &request.SuggestedTime, &request.Message, &request.Status, &request.CreatedAt, &request.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return request, nil
}

// GetGameRequestsByUsername 返回某个玩家作为发送方或接收方参与的所有请求
func (r *Repository) GetGameRequestsByUsername(username string) ([]*domain.GameRequest, error) {
	query := `
		SELECT id, sender_username, recipient_username, game_name, suggested_time, message, status, created_at, version
		FROM game_requests
		WHERE sender_username = $1 OR recipient_username = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*domain.GameRequest, 0)
	for rows.Next() {
		request := &domain.GameRequest{}
		dst := []any{&request.ID, &request.SenderUsername, &request.RecipientUsername, &request.GameName, &request.SuggestedTime, &request.Message, &request.Status, &request.CreatedAt, &request.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *Repository) UpdateGameRequestStatus(request *domain.GameRequest) error {
	query := `
		UPDATE game_requests
		SET
			status = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, request.Status, request.ID, request.Version).Scan(&request.Version); err != nil {
		return err
	}

	return nil
}

// GetNonTerminalSuggestedTimes 返回某个玩家参与的所有非终态请求的约定时间。
// 已占用时段从这些时间按需推导，不单独存储。
func (r *Repository) GetNonTerminalSuggestedTimes(username string) ([]time.Time, error) {
	query := `
		SELECT suggested_time
		FROM game_requests
		WHERE (sender_username = $1 OR recipient_username = $1)
			AND status IN ('pending', 'accepted')
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	times := make([]time.Time, 0)
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return times, nil
}
