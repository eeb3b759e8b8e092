// Package karma — handlers.go обрабатывает команды /karma, /top и благодарности.
package karma

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/common"
	"serotonyl.ru/moderator-bot/internal/config"
	"serotonyl.ru/moderator-bot/internal/features/members"
	"serotonyl.ru/moderator-bot/internal/metrics"
)

// Handler обрабатывает события кармы.
type Handler struct {
	service  *Service
	members  *members.Service
	api      common.TelegramAPI
	topLimit int
}

// NewHandler создаёт обработчик кармы.
func NewHandler(service *Service, memberService *members.Service, api common.TelegramAPI, cfg *config.Config) *Handler {
	return &Handler{
		service:  service,
		members:  memberService,
		api:      api,
		topLimit: cfg.KarmaTopLimit,
	}
}

// HandleKarma — /karma [@user]. Без цели показывает карму автора.
func (h *Handler) HandleKarma(ctx context.Context, msg *tgbotapi.Message, args []string) {
	targetID := msg.From.ID
	targetName := common.FirstNameOr(msg.From, "пользователь")

	target, _, err := h.members.ResolveTarget(ctx, msg, args)
	switch {
	case err == nil:
		targetID, targetName = target.UserID, target.Name
	case errors.Is(err, common.ErrUserNotFound):
		common.Reply(h.api, msg, "❌ Пользователь не найден. Ответьте на его сообщение.")
		return
	case !errors.Is(err, common.ErrNoTarget):
		log.WithError(err).Error("Ошибка поиска пользователя")
		common.Reply(h.api, msg, "❌ Ошибка получения кармы")
		return
	}

	score, err := h.service.GetScore(ctx, targetID, msg.Chat.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", targetID).Error("Ошибка получения кармы")
		common.Reply(h.api, msg, "❌ Ошибка получения кармы")
		return
	}

	common.Reply(h.api, msg, fmt.Sprintf("📊 Карма %s: %d", common.Escape(targetName), score))
}

// HandleTop — /top, лидеры кармы в чате.
func (h *Handler) HandleTop(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	entries, err := h.service.Top(ctx, chatID, h.topLimit)
	if err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка получения топа")
		common.Reply(h.api, msg, "❌ Ошибка получения топа")
		return
	}
	if len(entries) == 0 {
		common.Reply(h.api, msg, "📊 Пока нет данных о карме в этом чате.")
		return
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}
	names := h.members.Names(ctx, ids)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 <b>Топ-%d по карме:</b>\n\n", h.topLimit)
	for i, e := range entries {
		name, ok := names[e.UserID]
		if !ok {
			name = h.lookupName(chatID, e.UserID)
		}
		fmt.Fprintf(&sb, "%d. %s: %d 🎯\n", i+1, common.Escape(name), e.Score)
	}

	common.Reply(h.api, msg, sb.String())
}

// lookupName спрашивает имя у Telegram, если пользователя нет в реестре.
func (h *Handler) lookupName(chatID, userID int64) string {
	cm, err := h.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil || cm.User == nil || cm.User.FirstName == "" {
		return common.FallbackName(userID)
	}
	return cm.User.FirstName
}

// HandleThankYou начисляет карму автору сообщения, на которое ответили благодарностью.
// Возвращает true, если сообщение было распознано как благодарность.
func (h *Handler) HandleThankYou(ctx context.Context, msg *tgbotapi.Message) bool {
	if msg.From == nil || msg.From.IsBot || strings.HasPrefix(msg.Text, "/") {
		return false
	}
	if !IsThankYou(msg.Text) {
		return false
	}

	// упоминания без ответа не считаются: по @username карму не даём
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		return true
	}
	target := msg.ReplyToMessage.From

	if target.ID == msg.From.ID {
		common.Reply(h.api, msg, "❌ Нельзя начислить карму самому себе!")
		return true
	}
	if target.IsBot {
		return true
	}

	applied, err := h.service.Grant(ctx, msg.From.ID, target.ID, msg.Chat.ID)
	if err != nil {
		metrics.RecordKarmaGrant("error")
		log.WithError(err).WithFields(log.Fields{
			"from_user_id": msg.From.ID,
			"to_user_id":   target.ID,
			"chat_id":      msg.Chat.ID,
		}).Error("Ошибка начисления кармы")
		return true
	}
	if !applied {
		metrics.RecordKarmaGrant("cooldown")
		return true
	}

	metrics.RecordKarmaGrant("applied")
	common.Reply(h.api, msg, fmt.Sprintf("✅ Карма начислена %s! (+1)",
		common.Escape(common.FirstNameOr(target, "пользователю"))))
	return true
}
