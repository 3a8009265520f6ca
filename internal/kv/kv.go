// Package kv holds the persistence media the store flushes its collections
// to. A medium maps a slot name to one whole JSON document.
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNoValue = errors.New("kv: no value")

type Medium interface {
	// Load returns ErrNoValue when the slot was never written or was deleted.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	// SaveTTL writes a slot that stops loading after ttl. ttl <= 0 never
	// expires.
	SaveTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Purge drops expired slots and reports how many went.
	Purge(ctx context.Context) (int64, error)
	Close() error
}

type Options struct {
	Driver      string
	DatabaseURL string
	RedisURL    string
	SQLitePath  string
	LibSQLURL   string
}

// Open builds the medium named by opts.Driver.
func Open(ctx context.Context, opts Options) (Medium, error) {
	switch opts.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "postgres":
		return OpenPostgres(ctx, opts.DatabaseURL)
	case "redis":
		return OpenRedis(ctx, opts.RedisURL, DefaultRedisPrefix)
	case "sqlite":
		return OpenSQL(ctx, "sqlite3", opts.SQLitePath)
	case "libsql":
		return OpenSQL(ctx, "libsql", opts.LibSQLURL)
	}
	return nil, fmt.Errorf("kv: unknown driver %q", opts.Driver)
}
