package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"

	"github.com/findplayers-dev/findplayers/backend/internal/domain"
	"github.com/findplayers-dev/findplayers/backend/internal/schedule"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	displayName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(displayName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		DisplayName:  displayName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RolePlayer,
		// 大约五分之一的玩家不填固定时间表，只接受自定义邀请
		PrefersCustomAvailability: rand.Intn(5) == 0,
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

var gameNames = []string{
	"英雄联盟", "CS2", "Dota 2", "Apex Legends", "原神",
	"Valorant", "我的世界", "炉石传说", "星际争霸2", "永劫无间",
}

func GenerateRandomGameName() string {
	return gameNames[rand.Intn(len(gameNames))]
}

var requestMessages = []string{
	"一起上分吗？", "晚上来两把？", "缺个队友，来不来？",
	"看你时间合适，组队吗？", "周末开黑，带上你一个",
}

func GenerateRandomRequestMessage() string {
	return requestMessages[rand.Intn(len(requestMessages))]
}

// GenerateRandomAvailabilitySlots 随机生成 3~10 个不重复的 (星期, 整点) 空闲时段
func GenerateRandomAvailabilitySlots() []domain.AvailabilitySlot {
	n := rand.Intn(8) + 3
	seen := make(map[string]bool)
	slots := make([]domain.AvailabilitySlot, 0, n)

	for len(slots) < n {
		day := schedule.DayOfWeek(rand.Intn(7))
		hour := fmt.Sprintf("%02d:00", rand.Intn(24))

		key := schedule.FormatSlotKey(day, hour)
		if seen[key] {
			continue
		}
		seen[key] = true

		slots = append(slots, domain.AvailabilitySlot{Day: day.String(), Hour: hour})
	}

	return slots
}
