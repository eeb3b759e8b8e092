package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenSQLite открывает файловую (или in-memory) SQLite базу.
// Все запросы идут через одно соединение: SQLite всё равно пишет по одному.
func OpenSQLite(path string) (*Database, error) {
	if needsDir(path) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать каталог для базы: %w", err)
		}
	}

	gdb, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия SQLite: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.WithField("path", path).Info("Подключение к SQLite установлено")
	return &Database{Gorm: gdb, Dialect: DialectSQLite, sqlDB: sqlDB}, nil
}

// sqlitePath достаёт путь к файлу из URL базы.
//
//	sqlite://./data/app.db            → ./data/app.db
//	sqlite+aiosqlite:///./data/app.db → ./data/app.db
//	file:test?mode=memory             → file:test?mode=memory
func sqlitePath(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.HasPrefix(lower, "sqlite+"):
		_, rest, _ := strings.Cut(url, ":///")
		return rest
	case strings.HasPrefix(lower, "sqlite://"):
		return url[len("sqlite://"):]
	case strings.HasPrefix(lower, "sqlite:"):
		return url[len("sqlite:"):]
	default:
		return url
	}
}

// sqliteDSN добавляет busy_timeout и WAL для файловой базы.
func sqliteDSN(path string) string {
	if !needsDir(path) {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

func needsDir(path string) bool {
	return path != "" && path != ":memory:" && !strings.HasPrefix(path, "file:")
}
