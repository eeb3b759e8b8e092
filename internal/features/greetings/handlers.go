package greetings

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/common"
	"serotonyl.ru/moderator-bot/internal/features/admin"
	"serotonyl.ru/moderator-bot/internal/metrics"
)

// Handler приветствует новых участников.
type Handler struct {
	service *Service
	api     common.TelegramAPI
}

// NewHandler создаёт обработчик приветствий.
func NewHandler(service *Service, api common.TelegramAPI) *Handler {
	return &Handler{service: service, api: api}
}

// HandleChatMember здоровается при переходе left/kicked → участник.
func (h *Handler) HandleChatMember(ctx context.Context, upd *tgbotapi.ChatMemberUpdated) {
	if upd == nil || !IsJoin(upd.OldChatMember, upd.NewChatMember) {
		return
	}
	user := upd.NewChatMember.User
	if user == nil {
		return
	}
	chatID := upd.Chat.ID

	ok, err := h.service.ShouldGreet(ctx, user, chatID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"chat_id": chatID, "user_id": user.ID}).Error("Ошибка проверки приветствия")
		return
	}
	if !ok {
		return
	}

	metrics.RecordGreeting()
	common.SendText(h.api, chatID, WelcomeText(user))
}

// IsJoin — пользователь был вне чата и стал его участником.
func IsJoin(old, cur tgbotapi.ChatMember) bool {
	return !present(old) && present(cur)
}

func present(m tgbotapi.ChatMember) bool {
	switch m.Status {
	case admin.StatusMember, admin.StatusAdministrator, admin.StatusCreator:
		return true
	case admin.StatusRestricted:
		return m.IsMember
	case admin.StatusLeft, admin.StatusKicked:
		return false
	default:
		return false
	}
}

// WelcomeText — текст приветствия (HTML-экранированный).
func WelcomeText(u *tgbotapi.User) string {
	text := fmt.Sprintf("👋 Добро пожаловать, %s!", common.Escape(common.FirstNameOr(u, "пользователь")))
	if u.UserName != "" {
		text += fmt.Sprintf(" (@%s)", common.Escape(u.UserName))
	}
	return text
}
