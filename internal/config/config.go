// Package config загружает конфигурацию бота и веб-админки из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры,
// перед этим подхватывается .env (если файл есть).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// DefaultDatabaseURL — локальная SQLite, если DATABASE_URL не задан.
const DefaultDatabaseURL = "sqlite://./data/app.db"

// apiTimeoutMargin — запас сверх long polling для запросов к Telegram API.
const apiTimeoutMargin = 15 * time.Second

// Config содержит ВСЕ настройки бота.
type Config struct {
	// --- Telegram ---
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`

	// Разрешённые чаты (CSV). Пусто или мусор — ограничений нет.
	AllowedChatIDsRaw string  `envconfig:"ALLOWED_CHAT_IDS"`
	AllowedChatIDs    []int64 `ignored:"true"`
	// Чаты, где бот приветствует новичков (CSV). Пусто — везде.
	GreetingChatIDsRaw string  `envconfig:"GREETING_CHAT_IDS"`
	GreetingChatIDs    []int64 `ignored:"true"`

	// --- Database ---
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Karma ---
	KarmaCooldownMinutes int `envconfig:"KARMA_COOLDOWN_MINUTES" default:"60"`
	KarmaTopLimit        int `envconfig:"KARMA_TOP_LIMIT" default:"10"`

	// --- Warnings ---
	WarnLimit int `envconfig:"WARN_LIMIT" default:"3"`
	MuteHours int `envconfig:"MUTE_HOURS" default:"24"`

	// --- Greetings ---
	GreetingCooldownMinutes int `envconfig:"GREETING_COOLDOWN_MINUTES" default:"10"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	// Если задан — лимит общий для всех реплик бота и живёт в Redis.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// --- Health / metrics ---
	HealthAddr string `envconfig:"HEALTH_ADDR" default:":8080"`

	// --- Jobs ---
	DBMaintenanceSchedule string `envconfig:"DB_MAINTENANCE_SCHEDULE" default:"0 4 * * *"`
	StatsSchedule         string `envconfig:"STATS_SCHEDULE" default:"*/5 * * * *"`

	// --- Feature Flags ---
	FeatureKarmaEnabled      bool `envconfig:"FEATURE_KARMA_ENABLED" default:"true"`
	FeatureModerationEnabled bool `envconfig:"FEATURE_MODERATION_ENABLED" default:"true"`
	FeatureGreetingsEnabled  bool `envconfig:"FEATURE_GREETINGS_ENABLED" default:"true"`
}

// KarmaCooldown — окно, в течение которого повторная карма от того же человека тому же адресату не засчитывается.
func (c *Config) KarmaCooldown() time.Duration {
	return time.Duration(c.KarmaCooldownMinutes) * time.Minute
}

// GreetingCooldown — окно, в течение которого повторно не здороваемся.
func (c *Config) GreetingCooldown() time.Duration {
	return time.Duration(c.GreetingCooldownMinutes) * time.Minute
}

// MuteDuration — длительность мута при достижении лимита предупреждений.
func (c *Config) MuteDuration() time.Duration {
	return time.Duration(c.MuteHours) * time.Hour
}

// APIRequestTimeout — таймаут HTTP-клиента Telegram API. Должен быть больше
// long polling (BOT_UPDATE_TIMEOUT_SECONDS), иначе getUpdates будет обрываться.
func (c *Config) APIRequestTimeout() time.Duration {
	return time.Duration(c.BotUpdateTimeoutSeconds)*time.Second + apiTimeoutMargin
}

// DatabaseTarget возвращает строку подключения, подставляя SQLite по умолчанию.
func (c *Config) DatabaseTarget() string {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return DefaultDatabaseURL
	}
	return strings.TrimSpace(c.DatabaseURL)
}

func (c *Config) Validate() error {
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.KarmaCooldownMinutes < 0 || c.GreetingCooldownMinutes < 0 {
		return fmt.Errorf("кулдауны не могут быть отрицательными")
	}
	if c.KarmaTopLimit <= 0 {
		return fmt.Errorf("KARMA_TOP_LIMIT должен быть > 0")
	}
	if c.WarnLimit <= 0 {
		return fmt.Errorf("WARN_LIMIT должен быть > 0")
	}
	if c.MuteHours <= 0 {
		return fmt.Errorf("MUTE_HOURS должен быть > 0")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("некорректные RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW")
	}
	return nil
}

// Load читает .env и переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	loadDotEnv()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	cfg.AllowedChatIDs = parseChatList("ALLOWED_CHAT_IDS", cfg.AllowedChatIDsRaw)
	cfg.GreetingChatIDs = parseChatList("GREETING_CHAT_IDS", cfg.GreetingChatIDsRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv подхватывает .env из текущей директории. Уже выставленные переменные не перетираются.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("не удалось прочитать .env")
	}
}

// parseChatList разбирает список чатов. Кривой список не валит старт — просто снимаем ограничение.
func parseChatList(name, raw string) []int64 {
	ids, err := parseInt64CSV(raw)
	if err != nil {
		log.WithError(err).WithField("var", name).Warn("некорректный список чатов, ограничение отключено")
		return nil
	}
	return ids
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseCSV режет строку по запятым, выкидывая пустые элементы.
func ParseCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
