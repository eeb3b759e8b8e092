package warnings

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository работает с таблицей warnings.
type Repository struct {
	db *gorm.DB
}

// NewRepository создаёт репозиторий предупреждений.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Count возвращает число предупреждений пользователя в чате.
func (r *Repository) Count(ctx context.Context, userID, chatID int64) (int, error) {
	return count(r.db.WithContext(ctx), userID, chatID)
}

// Add вставляет предупреждение и возвращает новое количество.
func (r *Repository) Add(ctx context.Context, w *Warning) (int, error) {
	var n int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(w).Error; err != nil {
			return fmt.Errorf("ошибка записи предупреждения: %w", err)
		}
		var err error
		n, err = count(tx, w.UserID, w.ChatID)
		return err
	})
	return n, err
}

// RemoveLatest удаляет самое свежее предупреждение (если есть) и возвращает остаток.
func (r *Repository) RemoveLatest(ctx context.Context, userID, chatID int64) (int, error) {
	var n int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest Warning
		err := tx.Where("user_id = ? AND chat_id = ?", userID, chatID).
			Order("created_at DESC").
			Order("id DESC").
			First(&latest).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// снимать нечего
		case err != nil:
			return fmt.Errorf("ошибка поиска предупреждения: %w", err)
		default:
			if err := tx.Delete(&Warning{}, latest.ID).Error; err != nil {
				return fmt.Errorf("ошибка удаления предупреждения: %w", err)
			}
		}

		n, err = count(tx, userID, chatID)
		return err
	})
	return n, err
}

func count(db *gorm.DB, userID, chatID int64) (int, error) {
	var n int64
	err := db.Model(&Warning{}).
		Where("user_id = ? AND chat_id = ?", userID, chatID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта предупреждений: %w", err)
	}
	return int(n), nil
}
