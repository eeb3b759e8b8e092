package warnings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/common"
	"serotonyl.ru/moderator-bot/internal/config"
	"serotonyl.ru/moderator-bot/internal/features/admin"
	"serotonyl.ru/moderator-bot/internal/features/members"
	"serotonyl.ru/moderator-bot/internal/metrics"
)

const warnUsage = "❌ Ответьте на сообщение пользователя, которому хотите выдать предупреждение.\n" +
	"Использование: /warn [ответ на сообщение] [причина]"

// Handler обрабатывает /warn, /warns и /unwarn.
type Handler struct {
	service       *Service
	adminService  *admin.Service
	memberService *members.Service
	api           common.TelegramAPI
	muteHours     int
	muteFor       time.Duration
}

// NewHandler создаёт обработчик предупреждений. Длительность мута берётся из MUTE_HOURS.
func NewHandler(
	service *Service,
	adminService *admin.Service,
	memberService *members.Service,
	api common.TelegramAPI,
	cfg *config.Config,
) *Handler {
	return &Handler{
		service:       service,
		adminService:  adminService,
		memberService: memberService,
		api:           api,
		muteHours:     cfg.MuteHours,
		muteFor:       cfg.MuteDuration(),
	}
}

// HandleWarn — /warn [@user] [причина]. На лимите пытается замутить на MUTE_HOURS.
// Неудачный мут не отменяет предупреждение.
func (h *Handler) HandleWarn(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if !h.adminService.RequireAdmin(msg) {
		return
	}

	target, rest, ok := admin.ResolveOrReply(ctx, h.memberService, h.api, msg, args, warnUsage)
	if !ok {
		return
	}
	switch err := target.Validate(msg.From.ID); {
	case errors.Is(err, common.ErrSelfAction):
		common.Reply(h.api, msg, "❌ Нельзя выдать предупреждение самому себе!")
		return
	case errors.Is(err, common.ErrTargetIsBot):
		common.Reply(h.api, msg, "❌ Нельзя выдать предупреждение боту!")
		return
	}

	reason := strings.Join(rest, " ")
	count, err := h.service.Add(ctx, target.UserID, msg.Chat.ID, msg.From.ID, reason)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": target.UserID,
			"chat_id": msg.Chat.ID,
		}).Error("Ошибка выдачи предупреждения")
		common.Reply(h.api, msg, "❌ Ошибка при выдаче предупреждения.")
		return
	}
	metrics.RecordWarning()

	limit := h.service.Limit()
	var sb strings.Builder
	sb.WriteString("⚠️ <b>Предупреждение выдано</b>\n\n")
	fmt.Fprintf(&sb, "👤 Пользователь: %s\n", common.Escape(target.Name))
	if reason != "" {
		fmt.Fprintf(&sb, "📝 Причина: %s\n", common.Escape(reason))
	}

	if !h.service.Reached(count) {
		fmt.Fprintf(&sb, "📊 У вас <b>%d из %d</b> предупреждений до мута.\n", count, limit)
		fmt.Fprintf(&sb, "⚠️ Осталось предупреждений: <b>%d</b>\n\n", limit-count)
		sb.WriteString("💬 Пожалуйста, соблюдайте правила группы.")
		common.Reply(h.api, msg, sb.String())
		return
	}

	fmt.Fprintf(&sb, "📊 У вас <b>%d из %d</b> предупреждений.\n\n", count, limit)
	sb.WriteString("🔇 Лимит предупреждений достигнут!")
	sb.WriteString(h.escalate(msg, target))
	common.Reply(h.api, msg, sb.String())
}

// escalate мутит нарушителя и возвращает строку для ответа.
func (h *Handler) escalate(msg *tgbotapi.Message, target *members.Target) string {
	if errors.Is(h.adminService.CheckBotRights(msg.Chat.ID), common.ErrBotCannotRestrict) {
		return "\n\n⚠️ У бота нет прав для ограничения участников."
	}

	until := msg.Time().Add(h.muteFor)
	if err := h.adminService.Mute(msg.Chat.ID, target.UserID, until); err != nil {
		log.WithError(err).WithField("user_id", target.UserID).Error("Не удалось замутить после предупреждений")
		return fmt.Sprintf("\n\n⚠️ Не удалось замутить пользователя: %s", common.Escape(err.Error()))
	}
	return fmt.Sprintf("\n\n🔇 Пользователь получил мут на %s.", common.FormatHours(h.muteHours))
}

// HandleWarns — /warns [@user]. Без цели показывает предупреждения автора.
func (h *Handler) HandleWarns(ctx context.Context, msg *tgbotapi.Message, args []string) {
	targetID := msg.From.ID
	targetName := common.FirstNameOr(msg.From, "пользователь")

	target, _, err := h.memberService.ResolveTarget(ctx, msg, args)
	switch {
	case err == nil:
		targetID, targetName = target.UserID, target.Name
	case errors.Is(err, common.ErrUserNotFound):
		common.Reply(h.api, msg, "❌ Пользователь не найден. Ответьте на его сообщение.")
		return
	case !errors.Is(err, common.ErrNoTarget):
		log.WithError(err).Error("Ошибка поиска пользователя")
		common.Reply(h.api, msg, "❌ Не удалось определить пользователя.")
		return
	}

	count, err := h.service.Count(ctx, targetID, msg.Chat.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", targetID).Error("Ошибка подсчёта предупреждений")
		common.Reply(h.api, msg, "❌ Ошибка получения предупреждений.")
		return
	}

	common.Reply(h.api, msg, fmt.Sprintf("⚠️ У %s предупреждений: %d/%d",
		common.Escape(targetName), count, h.service.Limit()))
}

// HandleUnwarn — /unwarn [@user], снимает последнее предупреждение.
func (h *Handler) HandleUnwarn(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if !h.adminService.RequireAdmin(msg) {
		return
	}

	target, _, ok := admin.ResolveOrReply(ctx, h.memberService, h.api, msg, args, "❌ Ответьте на сообщение пользователя")
	if !ok {
		return
	}

	count, err := h.service.RemoveLatest(ctx, target.UserID, msg.Chat.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", target.UserID).Error("Ошибка снятия предупреждения")
		common.Reply(h.api, msg, "❌ Ошибка при снятии предупреждения.")
		return
	}

	common.Reply(h.api, msg, fmt.Sprintf("✅ Предупреждение снято с %s. Осталось предупреждений: %d/%d",
		common.Escape(target.Name), count, h.service.Limit()))
}
