// Package kv is the device-local key-value primitive the article store is
// built on. Values are opaque strings; callers own serialization.
package kv

import (
	"context"
	"fmt"
)

// Backend is a string-keyed store. Get reports ok=false for an absent key
// without an error.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

type Options struct {
	Backend     string
	Path        string
	RedisURL    string
	RedisPrefix string
}

// Open constructs the backend named in opts.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case "", "sqlite":
		return OpenSQLite(opts.Path)
	case "redis":
		return OpenRedis(ctx, opts.RedisURL, opts.RedisPrefix)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
