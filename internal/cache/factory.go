// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Backend names reported by NewCacheWithInfo.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheConfig holds configuration for cache creation.
type CacheConfig struct {
	// Type is the cache backend type: "memory" or "redis".
	Type string

	// RedisURL is the Redis connection URL (redis type only).
	RedisURL string

	// Prefix is the key prefix (redis type only).
	Prefix string

	// FallbackToMemory makes an unreachable Redis degrade to the memory cache.
	FallbackToMemory bool

	DefaultTTL    time.Duration
	MaxEntries    int // memory cache entry limit, 0 = unlimited
	SweepInterval time.Duration
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Type:             CacheBackendMemory,
		Prefix:           "blogicum:",
		FallbackToMemory: true,
		DefaultTTL:       time.Hour,
		MaxEntries:       10000,
		SweepInterval:    time.Minute,
	}
}

// Result describes the backend NewCacheWithInfo ended up with.
type Result struct {
	Cache       Cacher
	BackendType string
	IsFallback  bool
}

// NewCacheWithInfo creates the configured backend. When Redis is requested but
// cannot be reached and FallbackToMemory is set, a memory cache is returned
// with IsFallback = true.
func NewCacheWithInfo(ctx context.Context, cfg CacheConfig) (Result, error) {
	if cfg.Type == CacheBackendRedis && cfg.RedisURL != "" {
		redisCache, err := NewRedisCache(ctx, RedisOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
		})
		if err == nil {
			slog.Info("using redis cache", "url", SanitizeRedisURL(cfg.RedisURL))
			return Result{Cache: redisCache, BackendType: CacheBackendRedis}, nil
		}
		if !cfg.FallbackToMemory {
			return Result{}, fmt.Errorf("connecting to redis at %s: %w", SanitizeRedisURL(cfg.RedisURL), err)
		}
		slog.Warn("redis cache unavailable, falling back to memory cache",
			"url", SanitizeRedisURL(cfg.RedisURL), "error", err)
		return Result{Cache: newMemoryFromConfig(cfg), BackendType: CacheBackendMemory, IsFallback: true}, nil
	}

	return Result{Cache: newMemoryFromConfig(cfg), BackendType: CacheBackendMemory}, nil
}

func newMemoryFromConfig(cfg CacheConfig) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:    cfg.DefaultTTL,
		MaxEntries:    cfg.MaxEntries,
		SweepInterval: cfg.SweepInterval,
	})
}

// SanitizeRedisURL masks the password of a Redis URL for logging.
func SanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
