// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package blog holds the blog's domain rules: who may see a post, how
// feeds are paginated and what authors may change. Handlers call the
// Service and translate its sentinel errors into responses.
package blog

import (
	"database/sql"
	"time"

	"github.com/olegiv/blogicum/internal/cache"
	"github.com/olegiv/blogicum/internal/imaging"
	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/internal/storage"
)

// Options configures a Service.
type Options struct {
	PerPage  int
	Taxonomy *cache.TaxonomyCache
	Images   *imaging.Processor
	Storage  storage.Storage

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service implements feeds, post and comment management and accounts.
type Service struct {
	queries  *store.Queries
	taxonomy *cache.TaxonomyCache
	images   *imaging.Processor
	storage  storage.Storage
	perPage  int
	now      func() time.Time
}

// NewService creates a Service. A nil taxonomy cache gets an in-memory one.
func NewService(db *sql.DB, opts Options) *Service {
	queries := store.New(db)

	if opts.PerPage < 1 {
		opts.PerPage = DefaultPerPage
	}
	if opts.Taxonomy == nil {
		opts.Taxonomy = cache.NewTaxonomyCache(cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Hour, MaxEntries: 1000}), queries, time.Hour)
	}
	if opts.Images == nil {
		opts.Images = imaging.NewProcessor(0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		queries:  queries,
		taxonomy: opts.Taxonomy,
		images:   opts.Images,
		storage:  opts.Storage,
		perPage:  opts.PerPage,
		now:      opts.Now,
	}
}

// Queries exposes the underlying store queries.
func (s *Service) Queries() *store.Queries {
	return s.queries
}

// Taxonomy returns the category and location cache.
func (s *Service) Taxonomy() *cache.TaxonomyCache {
	return s.taxonomy
}

// ImageURL returns the public URL of a stored image path, or "" when the
// post has none.
func (s *Service) ImageURL(key string) string {
	if key == "" || s.storage == nil {
		return ""
	}
	return s.storage.URL(key)
}
