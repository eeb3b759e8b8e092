// Package greetings приветствует вступивших в чат, не чаще раза в GREETING_COOLDOWN_MINUTES.
package greetings

import "time"

// Greeting — факт приветствия. Нужен только для кулдауна.
type Greeting struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"not null;index:idx_greetings_user_chat,priority:1"`
	ChatID    int64     `gorm:"not null;index:idx_greetings_user_chat,priority:2"`
	CreatedAt time.Time `gorm:"not null;index:idx_greetings_user_chat,priority:3"`
}

func (Greeting) TableName() string { return "greetings" }
