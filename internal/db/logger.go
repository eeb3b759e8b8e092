package db

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

// gormWriter перенаправляет вывод GORM в logrus.
type gormWriter struct {
	entry *log.Entry
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.entry.Warnf(format, args...)
}

func newGormLogger() logger.Interface {
	return logger.New(
		gormWriter{entry: log.WithField("component", "gorm")},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
