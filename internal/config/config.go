// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads blogicum settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"BLOGICUM_DB_PATH" envDefault:"./data/blogicum.db"`
	SessionSecret string `env:"BLOGICUM_SESSION_SECRET,required"`
	ServerHost    string `env:"BLOGICUM_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"BLOGICUM_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"BLOGICUM_ENV" envDefault:"development"`

	// LogLevel accepts debug, info, warn or error.
	LogLevel slog.Level `env:"BLOGICUM_LOG_LEVEL" envDefault:"info"`

	// SiteURL is the public base URL used in the sitemap. Empty derives it from the request.
	SiteURL string `env:"BLOGICUM_SITE_URL"`

	// Feeds
	PostsPerPage int `env:"BLOGICUM_POSTS_PER_PAGE" envDefault:"10"`

	// Media storage. Images land under MediaDir/blogicum_images unless S3Bucket is set.
	MediaDir      string `env:"BLOGICUM_MEDIA_DIR" envDefault:"./media"`
	MaxUploadSize int64  `env:"BLOGICUM_MAX_UPLOAD_SIZE" envDefault:"10485760"`
	S3Bucket      string `env:"BLOGICUM_S3_BUCKET"`
	S3Region      string `env:"BLOGICUM_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint    string `env:"BLOGICUM_S3_ENDPOINT"` // MinIO or other S3-compatible endpoint
	S3AccessKey   string `env:"BLOGICUM_S3_ACCESS_KEY"`
	S3SecretKey   string `env:"BLOGICUM_S3_SECRET_KEY"`
	S3PublicURL   string `env:"BLOGICUM_S3_PUBLIC_URL"`

	// Cache configuration
	RedisURL     string        `env:"BLOGICUM_REDIS_URL"`
	CachePrefix  string        `env:"BLOGICUM_CACHE_PREFIX" envDefault:"blogicum:"`
	CacheTTL     time.Duration `env:"BLOGICUM_CACHE_TTL" envDefault:"1h"`
	CacheMaxSize int           `env:"BLOGICUM_CACHE_MAX_SIZE" envDefault:"10000"`

	// Housekeeping
	MediaSweepSchedule string `env:"BLOGICUM_MEDIA_SWEEP_SCHEDULE" envDefault:"0 3 * * *"`
	EventRetentionDays int    `env:"BLOGICUM_EVENT_RETENTION_DAYS" envDefault:"90"`

	// Seeding configuration
	DoSeed bool `env:"BLOGICUM_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// EventRetention is how long audit events are kept.
func (c Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// UseS3 returns true if uploaded images go to an S3 bucket.
func (c Config) UseS3() bool {
	return c.S3Bucket != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("BLOGICUM_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, errors.New("BLOGICUM_SESSION_SECRET is a known default value and must not be used")
		}
	}

	if cfg.PostsPerPage < 1 {
		return nil, fmt.Errorf("BLOGICUM_POSTS_PER_PAGE must be positive, got %d", cfg.PostsPerPage)
	}

	if cfg.UseS3() && (cfg.S3AccessKey == "") != (cfg.S3SecretKey == "") {
		return nil, errors.New("BLOGICUM_S3_ACCESS_KEY and BLOGICUM_S3_SECRET_KEY must be set together")
	}

	if cfg.SiteURL != "" {
		u, err := url.Parse(cfg.SiteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("BLOGICUM_SITE_URL must be an absolute http(s) URL, got %q", cfg.SiteURL)
		}
		cfg.SiteURL = strings.TrimSuffix(cfg.SiteURL, "/")
	}

	if cfg.CacheTTL <= 0 || cfg.EventRetentionDays < 1 {
		return nil, errors.New("BLOGICUM_CACHE_TTL and BLOGICUM_EVENT_RETENTION_DAYS must be positive")
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("BLOGICUM_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return &cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes.
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
