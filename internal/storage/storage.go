// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage keeps uploaded post images on the local disk or in an
// S3-compatible bucket. Keys are slash-separated paths relative to the
// media root, e.g. "blogicum_images/<uuid>.jpg".
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/blogicum/internal/config"
)

// Object is a stored file as seen by List.
type Object struct {
	Key     string
	ModTime time.Time
}

// Storage is implemented by every image backend.
type Storage interface {
	// Save writes data under key, replacing any existing object.
	Save(ctx context.Context, key string, data []byte, contentType string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]Object, error)

	// URL returns the public URL of key.
	URL(key string) string
}

// New picks the backend from configuration: S3 when a bucket is set,
// the local media directory otherwise.
func New(cfg *config.Config) (Storage, error) {
	if cfg.UseS3() {
		s, err := NewS3(S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("creating s3 storage: %w", err)
		}
		return s, nil
	}

	l, err := NewLocal(cfg.MediaDir, MediaURLPrefix)
	if err != nil {
		return nil, fmt.Errorf("creating local storage: %w", err)
	}
	return l, nil
}
