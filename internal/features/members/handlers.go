// Package members — handlers.go обрабатывает Telegram-события, связанные с участниками.
package members

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Handler обрабатывает события участников.
type Handler struct {
	service *Service
}

// NewHandler создаёт новый обработчик событий участников.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleMessage регистрирует автора и чат обычного сообщения.
// Ошибки только логируются: реестр не должен мешать командам.
func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if err := h.service.EnsureUser(ctx, msg.From); err != nil {
		log.WithError(err).WithField("user_id", msg.From.ID).Warn("EnsureUser failed")
	}
	if err := h.service.EnsureChat(ctx, msg.Chat); err != nil {
		log.WithError(err).WithField("chat_id", msg.Chat.ID).Warn("EnsureChat failed")
	}
}

// HandleNewChatMembers регистрирует всех вступивших из сервисного сообщения.
func (h *Handler) HandleNewChatMembers(ctx context.Context, msg *tgbotapi.Message) {
	if err := h.service.EnsureChat(ctx, msg.Chat); err != nil {
		log.WithError(err).WithField("chat_id", msg.Chat.ID).Warn("EnsureChat failed")
	}
	for i := range msg.NewChatMembers {
		user := msg.NewChatMembers[i]
		if err := h.service.EnsureUser(ctx, &user); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Error("Ошибка регистрации нового участника")
			continue
		}
		log.WithFields(log.Fields{
			"user_id":  user.ID,
			"username": user.UserName,
			"chat_id":  msg.Chat.ID,
		}).Info("Новый участник зарегистрирован")
	}
}
