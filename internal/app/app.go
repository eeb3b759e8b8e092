// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: открывает базу, накатывает миграции, создаёт сервисы,
// обработчики, фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/bot"
	"serotonyl.ru/moderator-bot/internal/bot/filters"
	"serotonyl.ru/moderator-bot/internal/bot/middleware"
	"serotonyl.ru/moderator-bot/internal/config"
	"serotonyl.ru/moderator-bot/internal/db"
	"serotonyl.ru/moderator-bot/internal/features/admin"
	"serotonyl.ru/moderator-bot/internal/features/greetings"
	"serotonyl.ru/moderator-bot/internal/features/karma"
	"serotonyl.ru/moderator-bot/internal/features/members"
	"serotonyl.ru/moderator-bot/internal/features/warnings"
	"serotonyl.ru/moderator-bot/internal/jobs"
	"serotonyl.ru/moderator-bot/internal/metrics"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *db.Database
	BotAPI    *tgbotapi.BotAPI
	Health    *metrics.Server

	limiter middleware.Limiter
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	database, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}
	log.WithField("dialect", database.Dialect).Info("База данных подключена")

	if err := database.Migrate(ctx, Migrations()); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	// без таймаута зависший restrictChatMember навсегда занимает слот обработки
	httpClient := &http.Client{Timeout: cfg.APIRequestTimeout()}
	botAPI, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development" && cfg.AppLogLevel == "debug"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Репозитории ===
	gdb := database.Gorm
	memberRepo := members.NewRepository(gdb)
	karmaRepo := karma.NewRepository(gdb)
	warnRepo := warnings.NewRepository(gdb)
	greetRepo := greetings.NewRepository(gdb)

	// === 4. Сервисы ===
	memberService := members.NewService(memberRepo)
	karmaService := karma.NewService(karmaRepo, cfg)
	warnService := warnings.NewService(warnRepo, cfg)
	adminService := admin.NewService(botAPI, botAPI.Self.ID)
	greetService := greetings.NewService(greetRepo, cfg)

	// === 5. Обработчики ===
	handlers := bot.Handlers{
		Members:   members.NewHandler(memberService),
		Karma:     karma.NewHandler(karmaService, memberService, botAPI, cfg),
		Warnings:  warnings.NewHandler(warnService, adminService, memberService, botAPI, cfg),
		Admin:     admin.NewHandler(adminService, memberService, botAPI),
		Greetings: greetings.NewHandler(greetService, botAPI),
	}

	// === 6. Фильтры и лимиты ===
	chatFilter := filters.NewChatFilter(cfg.AllowedChatIDs)
	if chatFilter.Restricted() {
		log.WithField("chats", cfg.AllowedChatIDs).Info("Бот работает только в разрешённых чатах")
	}
	limiter := newLimiter(ctx, cfg)

	// === 7. Собираем бота ===
	b := bot.New(botAPI, botAPI, botAPI.Self.UserName, cfg, chatFilter, limiter, handlers)

	// === 8. Планировщик задач ===
	scheduler, err := jobs.NewScheduler(ctx, database, cfg)
	if err != nil {
		limiter.Close()
		_ = database.Close()
		return nil, err
	}

	// === 9. Health / metrics ===
	var health *metrics.Server
	if cfg.HealthAddr != "" {
		health = metrics.NewServer(cfg.HealthAddr, database)
	}

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        database,
		BotAPI:    botAPI,
		Health:    health,
		limiter:   limiter,
	}, nil
}

// newLimiter выбирает общий лимитер в Redis или локальный в памяти.
// Недоступный Redis не валит старт.
func newLimiter(ctx context.Context, cfg *config.Config) middleware.Limiter {
	if cfg.RedisAddr == "" {
		return middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	client := middleware.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("Redis недоступен, rate limit в памяти")
		_ = client.Close()
		return middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	log.WithField("addr", cfg.RedisAddr).Info("Rate limit хранится в Redis")
	return middleware.NewRedisLimiter(client, cfg.RateLimitRequests, cfg.RateLimitWindow)
}

// Start запускает фоновые части: планировщик и health-сервер.
func (a *App) Start(ctx context.Context) {
	a.Scheduler.Start(ctx)
	if a.Health != nil {
		a.Health.Start()
	}
}

// Close останавливает всё в обратном порядке.
func (a *App) Close() {
	if a.Health != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.Health.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Ошибка остановки health-сервера")
		}
		cancel()
	}
	a.Scheduler.Stop()
	a.limiter.Close()
	if err := a.DB.Close(); err != nil {
		log.WithError(err).Warn("Ошибка закрытия БД")
	}
}
