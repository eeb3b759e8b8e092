// Package admin — handlers.go обрабатывает /mute и /unmute.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/common"
	"serotonyl.ru/moderator-bot/internal/features/members"
)

const muteUsage = "❌ Ответьте на сообщение пользователя.\nИспользование: /mute [reply] [часы 1-24]"

// Handler обрабатывает команды мута.
type Handler struct {
	service       *Service
	memberService *members.Service
	api           common.TelegramAPI
}

// NewHandler создаёт обработчик команд мута.
func NewHandler(service *Service, memberService *members.Service, api common.TelegramAPI) *Handler {
	return &Handler{
		service:       service,
		memberService: memberService,
		api:           api,
	}
}

// HandleMute — /mute [@user] [часы]. Время считается от даты сообщения.
func (h *Handler) HandleMute(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if !h.service.RequireAdmin(msg) {
		return
	}
	if !h.service.RequireBotRights(msg) {
		return
	}

	target, rest, ok := h.resolve(ctx, msg, args, muteUsage)
	if !ok {
		return
	}
	switch err := target.Validate(msg.From.ID); {
	case errors.Is(err, common.ErrSelfAction):
		common.Reply(h.api, msg, "❌ Нельзя замутить самого себя!")
		return
	case errors.Is(err, common.ErrTargetIsBot):
		common.Reply(h.api, msg, "❌ Нельзя замутить бота!")
		return
	}

	hours := ParseMuteHours(rest)
	until := msg.Time().Add(time.Duration(hours) * time.Hour)
	if err := h.service.Mute(msg.Chat.ID, target.UserID, until); err != nil {
		log.WithError(err).WithField("user_id", target.UserID).Error("Ошибка мута")
		common.Reply(h.api, msg, fmt.Sprintf("❌ Не удалось замутить пользователя: %s", common.Escape(err.Error())))
		return
	}

	common.Reply(h.api, msg, fmt.Sprintf(
		"🔇 <b>Пользователь замучен</b>\n\n"+
			"👤 Пользователь: %s\n"+
			"⏰ Время мута: <b>%s</b>\n\n"+
			"⏳ Пользователь не сможет писать сообщения до окончания мута.",
		common.Escape(target.Name), common.FormatHours(hours),
	))
}

// HandleUnmute — /unmute [@user].
func (h *Handler) HandleUnmute(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if !h.service.RequireAdmin(msg) {
		return
	}
	if !h.service.RequireBotRights(msg) {
		return
	}

	target, _, ok := h.resolve(ctx, msg, args, "❌ Ответьте на сообщение пользователя")
	if !ok {
		return
	}

	if err := h.service.Unmute(msg.Chat.ID, target.UserID); err != nil {
		log.WithError(err).WithField("user_id", target.UserID).Error("Ошибка снятия мута")
		common.Reply(h.api, msg, fmt.Sprintf("❌ Не удалось снять мут: %s", common.Escape(err.Error())))
		return
	}

	common.Reply(h.api, msg, fmt.Sprintf("✅ Мут снят с %s.", common.Escape(target.Name)))
}

func (h *Handler) resolve(ctx context.Context, msg *tgbotapi.Message, args []string, usage string) (*members.Target, []string, bool) {
	return ResolveOrReply(ctx, h.memberService, h.api, msg, args, usage)
}

// ResolveOrReply находит цель команды, а если не вышло — отвечает пользователю.
func ResolveOrReply(
	ctx context.Context,
	memberService *members.Service,
	api common.TelegramAPI,
	msg *tgbotapi.Message,
	args []string,
	usage string,
) (*members.Target, []string, bool) {
	target, rest, err := memberService.ResolveTarget(ctx, msg, args)
	switch {
	case err == nil:
		return target, rest, true
	case errors.Is(err, common.ErrNoTarget):
		common.Reply(api, msg, usage)
	case errors.Is(err, common.ErrUserNotFound):
		common.Reply(api, msg, "❌ Пользователь не найден. Ответьте на его сообщение.")
	default:
		log.WithError(err).Error("Ошибка поиска пользователя")
		common.Reply(api, msg, "❌ Не удалось определить пользователя.")
	}
	return nil, rest, false
}
