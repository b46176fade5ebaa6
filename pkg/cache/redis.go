// Package cache opens the Redis connection backing the console session store.
package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/admin-console/pkg/config"
)

// ClientName identifies console connections in CLIENT LIST.
const ClientName = "admin-console-sessions"

const defaultPingTimeout = 5 * time.Second

// Options translates the console Redis settings into client options.
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:        net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		ClientName:  ClientName,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.PingTimeout,
	}
}

// NewRedis connects to the session store and checks it answers within the
// configured ping timeout. The client is closed when the check fails.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = defaultPingTimeout
	}
	opts := Options(cfg)
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", opts.Addr, err)
	}
	return client, nil
}
