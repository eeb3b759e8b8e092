// Package members — repository.go отвечает за операции с таблицами users и chats.
package members

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"serotonyl.ru/moderator-bot/internal/common"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertUser создаёт пользователя или обновляет имя/username существующего.
func (r *Repository) UpsertUser(ctx context.Context, u *User) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_name", "is_bot", "updated_at"}),
	}).Create(u).Error
	if err != nil {
		return fmt.Errorf("ошибка создания/обновления пользователя %d: %w", u.ID, err)
	}
	return nil
}

// UpsertChat создаёт чат или обновляет название и тип.
func (r *Repository) UpsertChat(ctx context.Context, c *Chat) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "type", "updated_at"}),
	}).Create(c).Error
	if err != nil {
		return fmt.Errorf("ошибка создания/обновления чата %d: %w", c.ID, err)
	}
	return nil
}

// GetByID: если не найден — common.ErrUserNotFound.
func (r *Repository) GetByID(ctx context.Context, userID int64) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения пользователя (user_id=%d): %w", userID, err)
	}
	return &u, nil
}

// GetByUsername ищет без учёта регистра. Если не найден — common.ErrUserNotFound.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", username).
		Order("updated_at DESC").
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("username=%s: %w", username, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения пользователя (username=%s): %w", username, err)
	}
	return &u, nil
}

// GetByIDs возвращает найденных пользователей по id. Отсутствующих просто нет в карте.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*User, error) {
	out := make(map[int64]*User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []*User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("ошибка запроса пользователей: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// GetChat: если не найден — gorm.ErrRecordNotFound в цепочке.
func (r *Repository) GetChat(ctx context.Context, chatID int64) (*Chat, error) {
	var c Chat
	if err := r.db.WithContext(ctx).First(&c, "id = ?", chatID).Error; err != nil {
		return nil, fmt.Errorf("ошибка чтения чата (chat_id=%d): %w", chatID, err)
	}
	return &c, nil
}
