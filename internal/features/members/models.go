// Package members ведёт реестр пользователей и чатов, которых видел бот.
// models.go описывает таблицы users и chats.
package members

import (
	"strings"
	"time"

	"serotonyl.ru/moderator-bot/internal/common"
)

// User — пользователь Telegram. Создаётся при первом сообщении или вступлении в чат,
// имя и username обновляются при каждом следующем.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"` // Telegram user ID
	Username  string    `gorm:"size:64;index"`                  // @username без @ (может быть пустым)
	FirstName string    `gorm:"size:255"`
	LastName  string    `gorm:"size:255"`
	IsBot     bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

// Chat — чат, в котором бот получал сообщения.
type Chat struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	Title     string `gorm:"size:255"`
	Type      string `gorm:"size:32"` // private, group, supergroup, channel
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Chat) TableName() string { return "chats" }

// DisplayName возвращает отображаемое имя пользователя.
// Имя (и фамилия), если нет — @username, если нет и его — "User {id}".
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return common.FallbackName(u.ID)
}
