package greetings

import (
	"context"
	"slices"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"serotonyl.ru/moderator-bot/internal/config"
)

// Service решает, здороваться ли с вступившим.
type Service struct {
	repo     *Repository
	chats    []int64 // nil — во всех чатах
	cooldown time.Duration
	now      func() time.Time
}

// NewService создаёт сервис приветствий. Список чатов и кулдаун берутся из конфига.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		chats:    cfg.GreetingChatIDs,
		cooldown: cfg.GreetingCooldown(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ShouldGreet проверяет бота, список чатов и кулдаун. Если здороваться надо —
// сразу записывает приветствие.
func (s *Service) ShouldGreet(ctx context.Context, user *tgbotapi.User, chatID int64) (bool, error) {
	if user == nil || user.IsBot {
		return false, nil
	}
	if !s.chatAllowed(chatID) {
		return false, nil
	}

	now := s.now()
	return s.repo.Record(ctx, user.ID, chatID, now.Add(-s.cooldown), now)
}

func (s *Service) chatAllowed(chatID int64) bool {
	if len(s.chats) == 0 {
		return true
	}
	return slices.Contains(s.chats, chatID)
}
