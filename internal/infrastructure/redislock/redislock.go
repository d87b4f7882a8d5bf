// Package redislock lock por clave compartido entre instancias de la API, sobre Redis.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/conciliacion-api/internal/application/reconciliation"
)

var _ reconciliation.KeyLocker = (*Locker)(nil)

const keyPrefix = "conciliacion:lock:"

// Solo borra si el token sigue siendo el nuestro (el lock pudo expirar y tomarlo otro).
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker SET NX PX con TTL; el TTL acota cuánto queda tomado si el proceso muere.
type Locker struct {
	rdb   *redis.Client
	ttl   time.Duration
	retry time.Duration
	log   zerolog.Logger
}

// New construye el locker. ttl <= 0 usa 30s.
func New(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Locker{rdb: rdb, ttl: ttl, retry: 50 * time.Millisecond, log: log}
}

// NewClient crea y valida un cliente go-redis desde REDIS_URL.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Lock espera hasta tomar la clave o hasta que ctx termine.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	redisKey := keyPrefix + key
	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("redis lock %s: %w", key, ctx.Err())
		case <-time.After(l.retry):
		}
	}

	var once sync.Once
	return func() { once.Do(func() { l.release(key, redisKey, token) }) }, nil
}

func (l *Locker) release(key, redisKey, token string) {
	// ctx propio: el del request puede estar cancelado y el lock debe liberarse igual
	rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := releaseScript.Run(rctx, l.rdb, []string{redisKey}, token).Err(); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock en redis; expira por TTL")
	}
}
