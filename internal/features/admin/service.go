// Package admin — service.go: проверка прав через getChatMember и мут через restrictChatMember.
package admin

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/common"
	"serotonyl.ru/moderator-bot/internal/metrics"
)

// Service отвечает на вопросы о правах и выполняет ограничения.
// Никакого кеша: каждый вызов — запрос к Telegram, ошибка — «нет прав».
type Service struct {
	api   common.TelegramAPI
	botID int64
}

// NewService создаёт сервис прав. botID — id самого бота (api.Self.ID).
func NewService(api common.TelegramAPI, botID int64) *Service {
	return &Service{api: api, botID: botID}
}

func (s *Service) member(chatID, userID int64) (tgbotapi.ChatMember, error) {
	return s.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
}

// IsAdmin — владелец или администратор чата.
func (s *Service) IsAdmin(chatID, userID int64) bool {
	cm, err := s.member(chatID, userID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"chat_id": chatID, "user_id": userID}).Warn("getChatMember failed")
		return false
	}
	return cm.Status == StatusCreator || cm.Status == StatusAdministrator
}

// CanRestrictMembers — может ли пользователь ограничивать участников.
// Владелец может всегда, администратор — если у него есть can_restrict_members.
func (s *Service) CanRestrictMembers(chatID, userID int64) bool {
	cm, err := s.member(chatID, userID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"chat_id": chatID, "user_id": userID}).Warn("getChatMember failed")
		return false
	}
	switch cm.Status {
	case StatusCreator:
		return true
	case StatusAdministrator:
		return cm.CanRestrictMembers
	default:
		return false
	}
}

// BotCanRestrict — есть ли у самого бота право мутить в этом чате.
func (s *Service) BotCanRestrict(chatID int64) bool {
	return s.CanRestrictMembers(chatID, s.botID)
}

// CheckAdmin возвращает common.ErrNotAdmin, если userID не владелец и не администратор.
func (s *Service) CheckAdmin(chatID, userID int64) error {
	if !s.IsAdmin(chatID, userID) {
		return common.ErrNotAdmin
	}
	return nil
}

// CheckBotRights возвращает common.ErrBotCannotRestrict, если бот не может мутить в чате.
func (s *Service) CheckBotRights(chatID int64) error {
	if !s.BotCanRestrict(chatID) {
		return common.ErrBotCannotRestrict
	}
	return nil
}

// RequireAdmin отвечает отказом и возвращает false, если автор сообщения не админ.
func (s *Service) RequireAdmin(msg *tgbotapi.Message) bool {
	err := common.ErrNotAdmin
	if msg.From != nil {
		err = s.CheckAdmin(msg.Chat.ID, msg.From.ID)
	}
	if errors.Is(err, common.ErrNotAdmin) {
		common.Reply(s.api, msg, "❌ Эта команда доступна только администраторам!")
		return false
	}
	return true
}

// RequireBotRights отвечает отказом и возвращает false, если бот не может мутить.
func (s *Service) RequireBotRights(msg *tgbotapi.Message) bool {
	if errors.Is(s.CheckBotRights(msg.Chat.ID), common.ErrBotCannotRestrict) {
		common.Reply(s.api, msg, "❌ У бота нет прав для ограничения участников!")
		return false
	}
	return true
}

// Mute запрещает пользователю писать до until.
func (s *Service) Mute(chatID, userID int64, until time.Time) error {
	_, err := s.api.Request(tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		UntilDate:        until.Unix(),
		Permissions:      mutedPermissions(),
	})
	if err != nil {
		metrics.RecordRestriction("mute", "error")
		return fmt.Errorf("restrictChatMember: %w", err)
	}

	metrics.RecordRestriction("mute", "ok")
	log.WithFields(log.Fields{
		"chat_id": chatID,
		"user_id": userID,
		"until":   until.UTC().Format(time.RFC3339),
	}).Info("Пользователь замучен")
	return nil
}

// Unmute возвращает пользователю все разрешения.
func (s *Service) Unmute(chatID, userID int64) error {
	_, err := s.api.Request(tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		Permissions:      fullPermissions(),
	})
	if err != nil {
		metrics.RecordRestriction("unmute", "error")
		return fmt.Errorf("restrictChatMember: %w", err)
	}

	metrics.RecordRestriction("unmute", "ok")
	log.WithFields(log.Fields{"chat_id": chatID, "user_id": userID}).Info("Мут снят")
	return nil
}

// ParseMuteHours разбирает число часов для /mute: по умолчанию 1, границы 1..24,
// не число — 1.
func ParseMuteHours(args []string) int {
	if len(args) == 0 {
		return DefaultMuteHours
	}
	h, err := strconv.Atoi(args[0])
	if err != nil {
		return DefaultMuteHours
	}
	if h < MinMuteHours {
		return MinMuteHours
	}
	if h > MaxMuteHours {
		return MaxMuteHours
	}
	return h
}
