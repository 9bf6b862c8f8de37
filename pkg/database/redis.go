// Package database opens the optional Redis connection behind the storefront's
// shared storage backend.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes one Redis endpoint.
type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	DB          int
	DialTimeout time.Duration

	// SlowCommand enables warnings for commands slower than this.
	SlowCommand time.Duration
	Logger      *slog.Logger
}

// ParseRedisAddr builds a config for host:port with a 3s dial timeout.
func ParseRedisAddr(addr string) (RedisConfig, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("parse redis addr %q: %w", addr, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 || p > 65535 {
		return RedisConfig{}, fmt.Errorf("parse redis addr %q: bad port %q", addr, port)
	}
	return RedisConfig{Host: host, Port: p, DialTimeout: 3 * time.Second}, nil
}

func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewRedisClient connects, installs a CommandHook and pings once so a bad
// address fails at startup rather than on the first cart write.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	client.AddHook(NewCommandHook(cfg.SlowCommand, cfg.Logger))

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr(), err)
	}
	return client, nil
}
