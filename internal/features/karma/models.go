// Package karma реализует систему репутации (кармы) в пределах чата.
// models.go описывает таблицы karma и karma_transactions.
package karma

import "time"

// Karma хранит карму пользователя в конкретном чате.
type Karma struct {
	ID        int64 `gorm:"primaryKey"`
	UserID    int64 `gorm:"not null;uniqueIndex:idx_karma_user_chat"`
	ChatID    int64 `gorm:"not null;uniqueIndex:idx_karma_user_chat;index"`
	Score     int   `gorm:"column:karma;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Karma) TableName() string { return "karma" }

// Transaction — запись о выдаче кармы. По ним же считается кулдаун.
type Transaction struct {
	ID         int64     `gorm:"primaryKey"`
	FromUserID int64     `gorm:"not null;index:idx_karma_tx_pair,priority:1"`
	ToUserID   int64     `gorm:"not null;index:idx_karma_tx_pair,priority:2"`
	ChatID     int64     `gorm:"not null;index:idx_karma_tx_pair,priority:3"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

func (Transaction) TableName() string { return "karma_transactions" }

// Entry — строка топа.
type Entry struct {
	UserID int64
	Score  int
}
