package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// WebAdminConfig — настройки веб-админки сайта. Отдельный процесс, токен бота ему не нужен.
type WebAdminConfig struct {
	Addr     string `envconfig:"WEBADMIN_ADDR" default:":8000"`
	DataFile string `envconfig:"WEBADMIN_DATA_FILE" default:"webapp/data.json"`

	// Argon2id-хеш пароля (scripts/generate_hash.go). Пусто — вход без пароля.
	PasswordHash string        `envconfig:"WEBADMIN_PASSWORD_HASH"`
	SessionTTL   time.Duration `envconfig:"WEBADMIN_SESSION_TTL" default:"24h"`

	AllowedOriginsRaw string   `envconfig:"WEBADMIN_ALLOWED_ORIGINS"`
	AllowedOrigins    []string `ignored:"true"`

	ScraperTimeout time.Duration `envconfig:"SCRAPER_TIMEOUT" default:"10s"`

	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
}

func (c *WebAdminConfig) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("WEBADMIN_DATA_FILE не задан")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("WEBADMIN_SESSION_TTL должен быть > 0")
	}
	if c.ScraperTimeout <= 0 {
		return fmt.Errorf("SCRAPER_TIMEOUT должен быть > 0")
	}
	return nil
}

// LoadWebAdmin читает настройки веб-админки.
func LoadWebAdmin() (*WebAdminConfig, error) {
	loadDotEnv()

	var cfg WebAdminConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию веб-админки: %w", err)
	}
	cfg.AllowedOrigins = ParseCSV(cfg.AllowedOriginsRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
