// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: обслуживание БД и обновление
// метрик по размерам таблиц.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/config"
	"serotonyl.ru/moderator-bot/internal/metrics"
)

// Store — то, что задачам нужно от базы.
type Store interface {
	Maintain(ctx context.Context) error
	CountRows(ctx context.Context, table string) (int64, error)
}

// StatsTables — таблицы, размер которых попадает в метрики.
var StatsTables = []string{"users", "chats", "karma", "karma_transactions", "warnings", "greetings"}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron  *cron.Cron
	store Store
}

// NewScheduler создаёт планировщик задач с московским часовым поясом
// и регистрирует задачи по расписаниям из конфига.
func NewScheduler(ctx context.Context, store Store, cfg *config.Config) (*Scheduler, error) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить Europe/Moscow, используем UTC+3")
		loc = time.FixedZone("MSK", 3*60*60)
	}

	s := &Scheduler{
		cron:  cron.New(cron.WithLocation(loc)),
		store: store,
	}

	if _, err := s.cron.AddFunc(cfg.DBMaintenanceSchedule, func() { s.RunMaintenance(ctx) }); err != nil {
		return nil, fmt.Errorf("расписание DB_MAINTENANCE_SCHEDULE: %w", err)
	}
	if _, err := s.cron.AddFunc(cfg.StatsSchedule, func() { s.RefreshStats(ctx) }); err != nil {
		return nil, fmt.Errorf("расписание STATS_SCHEDULE: %w", err)
	}

	return s, nil
}

// RunMaintenance обслуживает базу (PRAGMA optimize / ANALYZE).
func (s *Scheduler) RunMaintenance(ctx context.Context) {
	log.Info("[CRON] Обслуживание базы")
	if err := s.store.Maintain(ctx); err != nil {
		log.WithError(err).Error("[CRON] Ошибка обслуживания базы")
	}
}

// RefreshStats обновляет gauge moderator_table_rows.
func (s *Scheduler) RefreshStats(ctx context.Context) {
	log.Debug("[CRON] Обновление статистики")
	for _, table := range StatsTables {
		n, err := s.store.CountRows(ctx, table)
		if err != nil {
			log.WithError(err).WithField("table", table).Warn("[CRON] Не удалось посчитать строки")
			continue
		}
		metrics.SetTableRows(table, n)
	}
}

// Start запускает все фоновые задачи. Статистику считаем сразу, не дожидаясь расписания.
func (s *Scheduler) Start(ctx context.Context) {
	s.RefreshStats(ctx)
	s.cron.Start()
	log.Info("Планировщик задач запущен (Europe/Moscow)")
}

// Stop останавливает планировщик и ждёт завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
