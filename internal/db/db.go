// Package db управляет подключением к базе данных.
// По умолчанию это локальная SQLite, если в DATABASE_URL указан PostgreSQL —
// поднимается пул pgxpool. Сверху всегда GORM: репозитории не знают, что под ними.
//
// Database создаётся один раз при старте и передаётся в конструкторы репозиториев.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"serotonyl.ru/moderator-bot/internal/config"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Database — хэндл хранилища: GORM плюс то, что под ним нужно закрыть.
type Database struct {
	Gorm    *gorm.DB
	Dialect string

	sqlDB *sql.DB
	pool  *pgxpool.Pool
}

// Open выбирает драйвер по DATABASE_URL и открывает базу.
func Open(ctx context.Context, cfg *config.Config) (*Database, error) {
	target := cfg.DatabaseTarget()
	if isPostgresURL(target) {
		return openPostgres(ctx, target, cfg.DBMaxConns, cfg.DBMinConns)
	}
	return OpenSQLite(sqlitePath(target))
}

// Close закрывает соединения.
func (d *Database) Close() error {
	err := d.sqlDB.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

// Ping проверяет, что база отвечает.
func (d *Database) Ping(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

// Maintain — плановое обслуживание: обновление статистики планировщика запросов.
func (d *Database) Maintain(ctx context.Context) error {
	stmt := "ANALYZE"
	if d.Dialect == DialectSQLite {
		stmt = "PRAGMA optimize"
	}
	if err := d.Gorm.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("обслуживание базы (%s): %w", stmt, err)
	}
	return nil
}

// CountRows возвращает число строк в таблице.
func (d *Database) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := d.Gorm.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("подсчёт строк %s: %w", table, err)
	}
	return n, nil
}
