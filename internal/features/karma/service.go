// Package karma — service.go содержит бизнес-логику кармы.
package karma

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/config"
)

// Service управляет системой кармы.
type Service struct {
	repo     *Repository
	cooldown time.Duration
	now      func() time.Time
}

// NewService создаёт сервис кармы.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		cooldown: cfg.KarmaCooldown(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetScore возвращает карму пользователя в чате (0, если её ещё нет).
func (s *Service) GetScore(ctx context.Context, userID, chatID int64) (int, error) {
	return s.repo.GetScore(ctx, userID, chatID)
}

// Grant даёт +1 карму. Возвращает false, если тот же пользователь уже давал карму
// этому человеку в этом чате в пределах кулдауна.
// Проверки «сам себе» и «боту» делает обработчик.
func (s *Service) Grant(ctx context.Context, fromUserID, toUserID, chatID int64) (bool, error) {
	now := s.now()
	applied, err := s.repo.Grant(ctx, fromUserID, toUserID, chatID, now.Add(-s.cooldown), now)
	if err != nil {
		return false, err
	}

	log.WithFields(log.Fields{
		"from_user_id": fromUserID,
		"to_user_id":   toUserID,
		"chat_id":      chatID,
		"applied":      applied,
	}).Debug("karma grant")
	return applied, nil
}

// Top возвращает лидеров чата.
func (s *Service) Top(ctx context.Context, chatID int64, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.repo.Top(ctx, chatID, limit)
}
