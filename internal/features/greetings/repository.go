package greetings

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Repository работает с таблицей greetings.
type Repository struct {
	db *gorm.DB
}

// NewRepository создаёт репозиторий приветствий.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record записывает приветствие, если с since его не было.
// Возвращает false, если кулдаун ещё действует.
func (r *Repository) Record(ctx context.Context, userID, chatID int64, since, now time.Time) (bool, error) {
	recorded := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		err := tx.Model(&Greeting{}).
			Where("user_id = ? AND chat_id = ? AND created_at >= ?", userID, chatID, since).
			Count(&n).Error
		if err != nil {
			return fmt.Errorf("ошибка проверки кулдауна приветствия: %w", err)
		}
		if n > 0 {
			return nil
		}

		g := Greeting{UserID: userID, ChatID: chatID, CreatedAt: now}
		if err := tx.Create(&g).Error; err != nil {
			return fmt.Errorf("ошибка записи приветствия: %w", err)
		}
		recorded = true
		return nil
	})
	return recorded, err
}
