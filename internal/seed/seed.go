package seed

import (
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/findplayers-dev/findplayers/backend/internal/domain"
	"github.com/findplayers-dev/findplayers/backend/internal/repository"
	"github.com/findplayers-dev/findplayers/backend/internal/schedule"
	"github.com/findplayers-dev/findplayers/backend/internal/utils"
)

func InsertRandomUsers(repo *repository.Repository, n int, password string, emailDomain string) error {
	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomUser(password, emailDomain)
		if err != nil {
			return err
		}

		if err := repo.CreateUser(user); err != nil {
			// 随机用户名可能撞车，跳过继续
			slog.Warn("插入随机用户失败，已跳过", "username", user.Username, "error", err)
			continue
		}
		slog.Info("已插入随机用户", "username", user.Username)
	}

	return nil
}

// InsertRandomAvailability 给所有没有选择"只接受自定义邀请"的玩家生成随机空闲时间表
func InsertRandomAvailability(repo *repository.Repository) error {
	users, err := repo.GetAllUsers()
	if err != nil {
		return err
	}

	for _, user := range users {
		if user.PrefersCustomAvailability {
			continue
		}

		slots := utils.GenerateRandomAvailabilitySlots()
		if err := repo.ReplaceAvailability(user.ID, slots); err != nil {
			return err
		}
		slog.Info("已插入随机空闲时间", "username", user.Username, "slots", len(slots))
	}

	return nil
}

// InsertRandomGameRequests 在随机的玩家对之间插入待处理的约玩请求
func InsertRandomGameRequests(repo *repository.Repository, n int) error {
	users, err := repo.GetAllUsers()
	if err != nil {
		return err
	}
	if len(users) < 2 {
		return errors.New("用户数量不足，无法生成约玩请求")
	}

	now := time.Now()
	for i := 0; i < n; i++ {
		sender := users[rand.Intn(len(users))]
		recipient := users[rand.Intn(len(users))]
		if sender.ID == recipient.ID {
			continue
		}

		day := schedule.DayOfWeek(rand.Intn(7))
		suggestedTime, err := schedule.NextOccurrence(day, "20:00", now.AddDate(0, 0, rand.Intn(7)))
		if err != nil {
			return err
		}

		request := &domain.GameRequest{
			SenderUsername:    sender.Username,
			RecipientUsername: recipient.Username,
			GameName:          utils.GenerateRandomGameName(),
			SuggestedTime:     suggestedTime,
			Message:           utils.GenerateRandomRequestMessage(),
		}

		if err := repo.CreateGameRequest(request); err != nil {
			slog.Warn("插入随机约玩请求失败，已跳过", "error", err)
			continue
		}
		slog.Info("已插入随机约玩请求", "sender", sender.Username, "recipient", recipient.Username)
	}

	return nil
}
