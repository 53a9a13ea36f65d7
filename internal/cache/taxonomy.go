// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/blogicum/internal/store"
)

const (
	taxonomyPrefix      = "taxonomy:"
	taxonomyChoicesKey  = taxonomyPrefix + "choices"
	taxonomyCategoryKey = taxonomyPrefix + "category:"
)

// Choices are the categories and locations offered by the post form.
type Choices struct {
	Categories []store.Category `json:"categories"`
	Locations  []store.Location `json:"locations"`
}

// TaxonomyCache caches categories and locations, which change rarely but
// are read on every post form and category feed.
type TaxonomyCache struct {
	queries    *store.Queries
	choices    *TypedCache[Choices]
	categories *TypedCache[store.Category]
	backend    Cacher
}

// NewTaxonomyCache creates a TaxonomyCache on top of backend.
func NewTaxonomyCache(backend Cacher, queries *store.Queries, ttl time.Duration) *TaxonomyCache {
	return &TaxonomyCache{
		queries:    queries,
		choices:    NewTypedCache[Choices](backend, ttl),
		categories: NewTypedCache[store.Category](backend, ttl),
		backend:    backend,
	}
}

// Choices returns every category and the published locations.
func (c *TaxonomyCache) Choices(ctx context.Context) (*Choices, error) {
	choices, err := c.choices.GetOrLoad(ctx, taxonomyChoicesKey, func(ctx context.Context) (Choices, error) {
		categories, err := c.queries.ListCategories(ctx)
		if err != nil {
			return Choices{}, err
		}
		locations, err := c.queries.ListPublishedLocations(ctx)
		if err != nil {
			return Choices{}, err
		}
		return Choices{Categories: categories, Locations: locations}, nil
	})
	if err != nil {
		return nil, err
	}
	return &choices, nil
}

// PublishedCategory returns a published category by slug. Misses are not
// cached, so the store error (sql.ErrNoRows) is returned on every lookup
// of an unknown slug.
func (c *TaxonomyCache) PublishedCategory(ctx context.Context, slug string) (*store.Category, error) {
	category, err := c.categories.GetOrLoad(ctx, taxonomyCategoryKey+slug, func(ctx context.Context) (store.Category, error) {
		return c.queries.GetPublishedCategoryBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Invalidate drops every cached taxonomy entry.
func (c *TaxonomyCache) Invalidate(ctx context.Context) {
	if err := c.backend.DeleteByPrefix(ctx, taxonomyPrefix); err != nil {
		slog.Warn("failed to invalidate taxonomy cache", "category", "cache", "error", err)
	}
}
