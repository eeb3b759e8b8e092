package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisLimiter — фиксированное окно в Redis, общее для всех реплик бота.
// При недоступном Redis запросы пропускаются.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisClient создаёт клиента; соединение проверяется в app через Ping.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:                  addr,
		Password:              password,
		DB:                    db,
		MaxRetries:            1,
		DialTimeout:           3 * time.Second,
		ContextTimeoutEnabled: true,
	})
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit",
	}
}

func (rl *RedisLimiter) key(userID int64) string {
	return fmt.Sprintf("%s:%d", rl.prefix, userID)
}

func (rl *RedisLimiter) Allow(ctx context.Context, userID int64) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	key := rl.key(userID)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// NX: срок ставится только первым запросом окна
	pipe.ExpireNX(ctx, key, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("rate limiter: redis недоступен, пропускаем")
		return true
	}

	return incr.Val() <= int64(rl.limit)
}

// Close закрывает клиента Redis.
func (rl *RedisLimiter) Close() {
	if err := rl.client.Close(); err != nil {
		log.WithError(err).Warn("rate limiter: ошибка закрытия redis")
	}
}
