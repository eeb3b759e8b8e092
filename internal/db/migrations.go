package db

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migration — одна версия схемы. Up выполняется в транзакции.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// SchemaMigration — запись о применённой миграции.
type SchemaMigration struct {
	Version   int `gorm:"primaryKey;autoIncrement:false"`
	Name      string
	AppliedAt time.Time
}

func (SchemaMigration) TableName() string { return "schema_migrations" }

// Migrate применяет миграции по порядку, пропуская уже записанные в schema_migrations.
func (d *Database) Migrate(ctx context.Context, migrations []Migration) error {
	gdb := d.Gorm.WithContext(ctx)
	if err := gdb.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("ошибка создания таблицы миграций: %w", err)
	}

	for _, m := range migrations {
		applied, err := d.applyMigration(ctx, m)
		if err != nil {
			return fmt.Errorf("миграция %d (%s): %w", m.Version, m.Name, err)
		}
		if applied {
			log.WithField("version", m.Version).Infof("Миграция %s применена", m.Name)
		}
	}
	return nil
}

// applyMigration выполняет одну миграцию в транзакции.
// Если что-то упадёт — транзакция откатится, версия не запишется.
func (d *Database) applyMigration(ctx context.Context, m Migration) (bool, error) {
	applied := false
	err := d.Gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&SchemaMigration{}).Where("version = ?", m.Version).Count(&count).Error; err != nil {
			return fmt.Errorf("ошибка проверки миграции: %w", err)
		}
		if count > 0 {
			return nil
		}

		if err := m.Up(tx); err != nil {
			return err
		}

		record := SchemaMigration{Version: m.Version, Name: m.Name, AppliedAt: time.Now().UTC()}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("ошибка записи версии миграции: %w", err)
		}
		applied = true
		return nil
	})
	return applied, err
}
