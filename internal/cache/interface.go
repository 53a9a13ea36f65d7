// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the byte-oriented cache backends (memory and Redis),
// a typed JSON wrapper and the taxonomy cache used by the post forms and
// category feeds.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cacher is implemented by every cache backend. Implementations must be
// safe for concurrent use.
type Cacher interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A zero TTL means the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	// DeleteByPrefix removes every key starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error

	Close() error
}

var (
	// ErrCacheMiss indicates the key was not found in cache or has expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheClosed is returned by every operation after Close.
	ErrCacheClosed = errors.New("cache closed")
)
