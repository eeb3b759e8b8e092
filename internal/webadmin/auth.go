package webadmin

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/moderator-bot/internal/common"
)

const (
	maxFailedAttempts = 3
	attemptsWindow    = time.Hour
)

// Параметры Argon2id для новых хешей.
const (
	argonMemory      uint32 = 64 * 1024 // 64 MB
	argonIterations  uint32 = 3
	argonParallelism uint8  = 2
	argonKeyLength   uint32 = 32
	argonSaltLength         = 16
)

// Auth — вход по одному паролю. Сессии и неудачные попытки живут в памяти процесса.
type Auth struct {
	hash string
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]time.Time   // токен → когда истекает
	failures map[string][]time.Time // клиент → неудачные попытки
}

// NewAuth создаёт аутентификатор. Пустой hash — вход не требуется.
func NewAuth(hash string, ttl time.Duration) *Auth {
	return &Auth{
		hash:     strings.TrimSpace(hash),
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]time.Time),
		failures: make(map[string][]time.Time),
	}
}

// Enabled — задан ли пароль.
func (a *Auth) Enabled() bool {
	return a.hash != ""
}

// Login проверяет пароль и выдаёт токен сессии.
// 3 неудачные попытки за час с одного клиента = блокировка до конца окна.
func (a *Auth) Login(client, password string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	recent := recentSince(a.failures[client], now.Add(-attemptsWindow))
	if len(recent) >= maxFailedAttempts {
		a.failures[client] = recent
		return "", common.ErrTooManyAttempts
	}

	if !VerifyPassword(password, a.hash) {
		a.failures[client] = append(recent, now)
		log.WithFields(log.Fields{"client": client, "failures": len(recent) + 1}).Warn("Неверный пароль веб-админки")
		return "", common.ErrWrongPassword
	}
	delete(a.failures, client)

	a.sweep(now)
	token := generateSecureToken()
	a.sessions[token] = now.Add(a.ttl)
	return token, nil
}

// Valid — токен выдан и не истёк.
func (a *Auth) Valid(token string) bool {
	if token == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	expires, ok := a.sessions[token]
	if !ok {
		return false
	}
	if a.now().After(expires) {
		delete(a.sessions, token)
		return false
	}
	return true
}

// Logout удаляет сессию.
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, token)
}

// sweep чистит истёкшие сессии и старые попытки. Вызывается под mu.
func (a *Auth) sweep(now time.Time) {
	for token, expires := range a.sessions {
		if now.After(expires) {
			delete(a.sessions, token)
		}
	}
	cutoff := now.Add(-attemptsWindow)
	for client, times := range a.failures {
		if recent := recentSince(times, cutoff); len(recent) == 0 {
			delete(a.failures, client)
		} else {
			a.failures[client] = recent
		}
	}
}

func recentSince(times []time.Time, cutoff time.Time) []time.Time {
	var recent []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	return recent
}

// --- Криптографические утилиты ---

// HashPassword возвращает хеш Argon2id в стандартном формате.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("ошибка генерации соли: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword проверяет пароль по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func VerifyPassword(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// сравнение в постоянном времени
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// generateSecureToken генерирует криптографически безопасный токен сессии.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}
