// Package timeouts holds the deadlines handlers and stores put on
// database calls via context.WithTimeout.
//
// Tiers:
//   - Ping: health checks
//   - Short: single-document reads and writes (profile lookup, comment)
//   - Medium: list queries and aggregation pipelines
//   - Long: multi-collection writes (register, startup seed, schema)
//
// The values are process-wide so that bootstrap can apply configuration
// once. Handlers call the getters; they never hold a copy.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure is called.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config holds one value per tier. Zero values keep the current setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

var (
	mu  sync.RWMutex
	cur = Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
)

func Ping() time.Duration   { return get().Ping }
func Short() time.Duration  { return get().Short }
func Medium() time.Duration { return get().Medium }
func Long() time.Duration   { return get().Long }

func get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure overrides the tiers that are set in cfg and logs the result.
func Configure(cfg Config, logger *zap.Logger) {
	mu.Lock()
	if cfg.Ping > 0 {
		cur.Ping = cfg.Ping
	}
	if cfg.Short > 0 {
		cur.Short = cfg.Short
	}
	if cfg.Medium > 0 {
		cur.Medium = cfg.Medium
	}
	if cfg.Long > 0 {
		cur.Long = cfg.Long
	}
	applied := cur
	mu.Unlock()

	if logger != nil {
		logger.Info("timeouts configured",
			zap.Duration("ping", applied.Ping),
			zap.Duration("short", applied.Short),
			zap.Duration("medium", applied.Medium),
			zap.Duration("long", applied.Long))
	}
}

// Reset restores the defaults. Tests use it after Configure.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

// WithShort derives a context bounded by the Short tier.
func WithShort(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, Short())
}

// WithMedium derives a context bounded by the Medium tier.
func WithMedium(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, Medium())
}
