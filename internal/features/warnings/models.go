// Package warnings — предупреждения участникам и эскалация в мут.
package warnings

import "time"

// Warning — одно предупреждение пользователю в чате.
type Warning struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"not null;index:idx_warnings_user_chat,priority:1"`
	ChatID    int64     `gorm:"not null;index:idx_warnings_user_chat,priority:2"`
	AdminID   int64     `gorm:"not null"`
	Reason    *string   `gorm:"size:512"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Warning) TableName() string { return "warnings" }
