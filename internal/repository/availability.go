package repository

import (
	"context"
	"time"

	"github.com/findplayers-dev/findplayers/backend/internal/domain"
)

// ReplaceAvailability 整表覆盖一个玩家的空闲时间。
// 先删后插，和前端"保存即覆盖"的语义保持一致，不保留历史。
func (r *Repository) ReplaceAvailability(userID int64, slots []domain.AvailabilitySlot) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `DELETE FROM availability_slots WHERE user_id = $1`
	if _, err := tx.ExecContext(ctx, query, userID); err != nil {
		return err
	}

	for _, slot := range slots {
		query := `
			INSERT INTO availability_slots (user_id, day_of_week, start_time)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, userID, slot.Day, slot.Hour); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAvailabilityByUserID(userID int64) ([]domain.AvailabilitySlot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT day_of_week, start_time
		FROM availability_slots
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]domain.AvailabilitySlot, 0)
	for rows.Next() {
		slot := domain.AvailabilitySlot{}
		if err := rows.Scan(&slot.Day, &slot.Hour); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}
