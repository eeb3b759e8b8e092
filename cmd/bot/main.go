// Package main — точка входа модератор-бота.
// Останавливается по SIGINT/SIGTERM, дожидаясь обработки текущих апдейтов.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/app"
	"serotonyl.ru/moderator-bot/internal/config"
)

func main() {
	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}
	applyLogLevel(cfg.AppLogLevel)

	if err := run(cfg); err != nil {
		log.WithError(err).Fatal("Бот завершился с ошибкой")
	}
	log.Info("=== Бот остановлен ===")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// БД, миграции, Telegram API, сервисы, планировщик
	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	application.Start(ctx)

	log.WithField("chats", len(cfg.AllowedChatIDs)).Info("=== Бот готов к работе ===")

	// Start возвращается после отмены ctx, когда доделаны текущие апдейты
	application.Bot.Start(ctx)
	return nil
}

// setupLogging настраивает формат логов. Уровень до загрузки конфига — debug.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}

func applyLogLevel(value string) {
	level, err := log.ParseLevel(value)
	if err != nil {
		log.WithField("level", value).Warn("Неизвестный APP_LOG_LEVEL, оставляем debug")
		return
	}
	log.SetLevel(level)
}
