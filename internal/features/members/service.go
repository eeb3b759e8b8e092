// Package members — service.go содержит логику реестра пользователей и чатов.
package members

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/common"
)

// Service управляет реестром пользователей и чатов.
type Service struct {
	repo *Repository
}

// NewService создаёт новый сервис участников.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// EnsureUser регистрирует автора сообщения или обновляет его данные.
func (s *Service) EnsureUser(ctx context.Context, u *tgbotapi.User) error {
	if u == nil {
		return nil
	}
	return s.repo.UpsertUser(ctx, &User{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsBot:     u.IsBot,
	})
}

// EnsureChat регистрирует чат или обновляет его название.
func (s *Service) EnsureChat(ctx context.Context, c *tgbotapi.Chat) error {
	if c == nil {
		return nil
	}
	return s.repo.UpsertChat(ctx, &Chat{ID: c.ID, Title: c.Title, Type: c.Type})
}

// GetByID возвращает пользователя по Telegram user ID.
func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// GetByUsername возвращает пользователя по @username (с @ или без).
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, trimAt(username))
}

// Names возвращает отображаемые имена для списка id.
// Кого нет в реестре — в карте нет, вызывающий решает, как их показать.
func (s *Service) Names(ctx context.Context, ids []int64) map[int64]string {
	users, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить имена пользователей")
		return map[int64]string{}
	}

	out := make(map[int64]string, len(users))
	for id, u := range users {
		out[id] = u.DisplayName()
	}
	return out
}

// NameOf возвращает отображаемое имя одного пользователя или "User {id}".
func (s *Service) NameOf(ctx context.Context, userID int64) string {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return common.FallbackName(userID)
	}
	return u.DisplayName()
}
