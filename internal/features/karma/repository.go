// Package karma — repository.go выполняет операции с таблицами karma и karma_transactions.
package karma

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Repository работает с таблицами karma и karma_transactions.
type Repository struct {
	db *gorm.DB
}

// NewRepository создаёт репозиторий кармы.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetScore возвращает карму пользователя в чате. Нет записи — 0.
func (r *Repository) GetScore(ctx context.Context, userID, chatID int64) (int, error) {
	var k Karma
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND chat_id = ?", userID, chatID).
		First(&k).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("ошибка чтения кармы: %w", err)
	}
	return k.Score, nil
}

// Grant в одной транзакции проверяет кулдаун, пишет транзакцию и прибавляет +1.
// Если с since уже была выдача той же паре в этом чате — ничего не меняет и возвращает false.
//
// Внутри Transaction используется только tx: у SQLite одно соединение.
func (r *Repository) Grant(ctx context.Context, fromUserID, toUserID, chatID int64, since, now time.Time) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recent int64
		err := tx.Model(&Transaction{}).
			Where("from_user_id = ? AND to_user_id = ? AND chat_id = ? AND created_at >= ?",
				fromUserID, toUserID, chatID, since).
			Count(&recent).Error
		if err != nil {
			return fmt.Errorf("ошибка проверки кулдауна: %w", err)
		}
		if recent > 0 {
			return nil
		}

		txRecord := Transaction{FromUserID: fromUserID, ToUserID: toUserID, ChatID: chatID, CreatedAt: now}
		if err := tx.Create(&txRecord).Error; err != nil {
			return fmt.Errorf("ошибка записи транзакции кармы: %w", err)
		}

		res := tx.Model(&Karma{}).
			Where("user_id = ? AND chat_id = ?", toUserID, chatID).
			Updates(map[string]interface{}{
				"karma":      gorm.Expr("karma + ?", 1),
				"updated_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("ошибка начисления кармы: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			k := Karma{UserID: toUserID, ChatID: chatID, Score: 1, CreatedAt: now, UpdatedAt: now}
			if err := tx.Create(&k).Error; err != nil {
				return fmt.Errorf("ошибка создания кармы: %w", err)
			}
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// Top возвращает до limit записей по убыванию кармы, при равенстве — по user_id.
func (r *Repository) Top(ctx context.Context, chatID int64, limit int) ([]Entry, error) {
	var rows []Karma
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("karma DESC").
		Order("user_id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения топа кармы: %w", err)
	}

	out := make([]Entry, 0, len(rows))
	for _, k := range rows {
		out = append(out, Entry{UserID: k.UserID, Score: k.Score})
	}
	return out, nil
}

// CountTransactions — сколько транзакций (from, to, chat) есть всего. Для тестов и статистики.
func (r *Repository) CountTransactions(ctx context.Context, fromUserID, toUserID, chatID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("from_user_id = ? AND to_user_id = ? AND chat_id = ?", fromUserID, toUserID, chatID).
		Count(&n).Error
	return n, err
}
