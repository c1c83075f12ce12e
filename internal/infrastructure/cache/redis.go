package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultPingTimeout = 5 * time.Second

// Options configures the redis client used for idempotency keys and the
// escalation sweep lock.
type Options struct {
	Addr     string
	DB       int
	Password string
	// PingTimeout bounds the startup ping; zero means 5s.
	PingTimeout time.Duration
}

// OpenRedis connects and pings; the client is closed again if the ping fails.
func OpenRedis(opts Options) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: opts.Addr, DB: opts.DB, Password: opts.Password})

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	zap.L().Info("redis: connected", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return r, nil
}
