package warnings

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/config"
)

// Service считает предупреждения и решает, пора ли мутить.
// Сам мут делает вызывающий код.
type Service struct {
	repo  *Repository
	limit int
	now   func() time.Time
}

// NewService создаёт сервис предупреждений с лимитом WARN_LIMIT.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{
		repo:  repo,
		limit: cfg.WarnLimit,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Limit — сколько предупреждений ведут к муту.
func (s *Service) Limit() int { return s.limit }

// Count возвращает текущее число предупреждений.
func (s *Service) Count(ctx context.Context, userID, chatID int64) (int, error) {
	return s.repo.Count(ctx, userID, chatID)
}

// Add выдаёт предупреждение и возвращает их новое количество. Пустая причина не сохраняется.
func (s *Service) Add(ctx context.Context, userID, chatID, adminID int64, reason string) (int, error) {
	w := &Warning{
		UserID:    userID,
		ChatID:    chatID,
		AdminID:   adminID,
		CreatedAt: s.now(),
	}
	if r := strings.TrimSpace(reason); r != "" {
		w.Reason = &r
	}

	n, err := s.repo.Add(ctx, w)
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"chat_id":  chatID,
		"admin_id": adminID,
		"count":    n,
	}).Info("Выдано предупреждение")
	return n, nil
}

// RemoveLatest снимает последнее предупреждение. При нуле ничего не делает.
func (s *Service) RemoveLatest(ctx context.Context, userID, chatID int64) (int, error) {
	return s.repo.RemoveLatest(ctx, userID, chatID)
}

// ShouldMute — достигнут ли лимит.
func (s *Service) ShouldMute(ctx context.Context, userID, chatID int64) (bool, error) {
	n, err := s.repo.Count(ctx, userID, chatID)
	if err != nil {
		return false, err
	}
	return s.Reached(n), nil
}

// Reached — true, если count уже на лимите или выше.
func (s *Service) Reached(count int) bool {
	return count >= s.limit
}
