// Package bot содержит главный модуль бота: запуск polling и маршрутизацию апдейтов.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/bot/filters"
	"serotonyl.ru/moderator-bot/internal/bot/middleware"
	"serotonyl.ru/moderator-bot/internal/common"
	"serotonyl.ru/moderator-bot/internal/config"
	"serotonyl.ru/moderator-bot/internal/features/admin"
	"serotonyl.ru/moderator-bot/internal/features/greetings"
	"serotonyl.ru/moderator-bot/internal/features/karma"
	"serotonyl.ru/moderator-bot/internal/features/members"
	"serotonyl.ru/moderator-bot/internal/features/warnings"
	"serotonyl.ru/moderator-bot/internal/metrics"
)

// Updater — источник апдейтов (long polling).
type Updater interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handlers — обработчики фич, между которыми бот раскидывает апдейты.
type Handlers struct {
	Members   *members.Handler
	Karma     *karma.Handler
	Warnings  *warnings.Handler
	Admin     *admin.Handler
	Greetings *greetings.Handler
}

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api     common.TelegramAPI
	updater Updater
	cfg     *config.Config

	chatFilter *filters.ChatFilter
	limiter    middleware.Limiter

	handlers Handlers
	parser   *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт бота. botUsername нужен, чтобы понимать команды вида /top@bot.
func New(
	api common.TelegramAPI,
	updater Updater,
	botUsername string,
	cfg *config.Config,
	chatFilter *filters.ChatFilter,
	limiter middleware.Limiter,
	handlers Handlers,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:        api,
		updater:    updater,
		cfg:        cfg,
		chatFilter: chatFilter,
		limiter:    limiter,
		handlers:   handlers,
		parser:     NewCommandParser(botUsername),
		inflight:   make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram. Блокирует до отмены ctx.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds
	// chat_member приходит только если запросить его явно
	u.AllowedUpdates = []string{
		tgbotapi.UpdateTypeMessage,
		tgbotapi.UpdateTypeEditedMessage,
		tgbotapi.UpdateTypeCallbackQuery,
		tgbotapi.UpdateTypeChatMember,
	}

	updates := b.updater.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": cap(b.inflight),
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.updater.StopReceivingUpdates()
			b.wait()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				b.wait()
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// wait дожидается обработчиков, которые ещё работают.
func (b *Bot) wait() {
	for range cap(b.inflight) {
		b.inflight <- struct{}{}
	}
	for range cap(b.inflight) {
		<-b.inflight
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic(update.UpdateID)

	ev := filters.Classify(update)
	metrics.RecordUpdate(string(ev.Kind))

	if !b.chatFilter.Allow(ev) {
		metrics.RecordDropped("chat_filter")
		return
	}

	switch ev.Kind {
	case filters.KindChatMember:
		if b.cfg.FeatureGreetingsEnabled {
			b.handlers.Greetings.HandleChatMember(ctx, update.ChatMember)
		}
	case filters.KindMessage:
		b.handleMessage(ctx, update.Message)
	case filters.KindCallback:
		b.answerCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil || message.From == nil {
		return
	}

	// сервисное сообщение о вступлении
	if len(message.NewChatMembers) > 0 {
		b.handlers.Members.HandleNewChatMembers(ctx, message)
		return
	}

	b.handlers.Members.HandleMessage(ctx, message)

	if message.Text == "" {
		return
	}
	middleware.LogMessage(message)

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	name, known := commandAliases[cmd]
	if !isCommand || !known {
		// "!спасибо" — не команда, а благодарность; "/неизвестное" отсекает сам слушатель кармы
		if b.cfg.FeatureKarmaEnabled {
			b.handlers.Karma.HandleThankYou(ctx, message)
		}
		return
	}

	log.WithFields(log.Fields{
		"cmd":  name,
		"args": args,
	}).Debug("parsed command")

	if !b.limiter.Allow(ctx, message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		metrics.RecordDropped("rate_limited")
		return
	}

	b.routeCommand(ctx, message, name, args)
}

// routeCommand маршрутизирует команду (уже приведённую к каноническому имени) к обработчику.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, name string, args []string) {
	if !b.enabled(name) {
		return
	}
	metrics.RecordCommand(name)

	switch name {
	case "start", "help":
		common.Reply(b.api, message, b.helpText())
	case "karma":
		b.handlers.Karma.HandleKarma(ctx, message, args)
	case "top":
		b.handlers.Karma.HandleTop(ctx, message)
	case "warn":
		b.handlers.Warnings.HandleWarn(ctx, message, args)
	case "warns":
		b.handlers.Warnings.HandleWarns(ctx, message, args)
	case "unwarn":
		b.handlers.Warnings.HandleUnwarn(ctx, message, args)
	case "mute":
		b.handlers.Admin.HandleMute(ctx, message, args)
	case "unmute":
		b.handlers.Admin.HandleUnmute(ctx, message, args)
	}
}

func (b *Bot) enabled(cmd string) bool {
	switch cmd {
	case "karma", "top":
		return b.cfg.FeatureKarmaEnabled
	case "warn", "warns", "unwarn", "mute", "unmute":
		return b.cfg.FeatureModerationEnabled
	default:
		return true
	}
}

// answerCallback гасит «часики» на кнопке. Своих клавиатур у бота нет.
func (b *Bot) answerCallback(q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		log.WithError(err).WithField("callback_id", q.ID).Debug("Не удалось ответить на callback")
	}
}
