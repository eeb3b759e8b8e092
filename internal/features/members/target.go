// Package members — target.go определяет, к кому относится команда модерации.
package members

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"serotonyl.ru/moderator-bot/internal/common"
)

// Target — пользователь, к которому применяется команда.
type Target struct {
	UserID   int64
	Name     string // имя для ответа (не экранировано)
	Username string
	IsBot    bool
}

// ResolveTarget выбирает цель команды:
//  1. автор сообщения, на которое ответили;
//  2. первый аргумент вида @username, найденный в реестре.
//
// Возвращает оставшиеся аргументы (без @username).
// Ошибки: common.ErrNoTarget, если цель не указана; common.ErrUserNotFound, если
// @username боту неизвестен.
func (s *Service) ResolveTarget(ctx context.Context, msg *tgbotapi.Message, args []string) (*Target, []string, error) {
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		u := msg.ReplyToMessage.From
		return &Target{
			UserID:   u.ID,
			Name:     common.UserName(u),
			Username: u.UserName,
			IsBot:    u.IsBot,
		}, args, nil
	}

	if len(args) == 0 || !strings.HasPrefix(args[0], "@") || len(args[0]) < 2 {
		return nil, args, common.ErrNoTarget
	}

	u, err := s.GetByUsername(ctx, args[0])
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, args[1:], common.ErrUserNotFound
		}
		return nil, args[1:], err
	}

	name := u.FirstName
	if name == "" {
		name = u.Username
	}
	return &Target{
		UserID:   u.ID,
		Name:     name,
		Username: u.Username,
		IsBot:    u.IsBot,
	}, args[1:], nil
}

// Validate проверяет, что actorID может применить команду к цели.
// Ошибки: common.ErrSelfAction, common.ErrTargetIsBot.
func (t *Target) Validate(actorID int64) error {
	if t.UserID == actorID {
		return common.ErrSelfAction
	}
	if t.IsBot {
		return common.ErrTargetIsBot
	}
	return nil
}

func trimAt(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(username), "@")
}
