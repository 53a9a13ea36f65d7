// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blogicum/internal/store"
)

func newTaxonomyFixture(t *testing.T) (*TaxonomyCache, *store.Queries) {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "taxonomy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	mem := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = mem.Close() })

	q := store.New(db)
	return NewTaxonomyCache(mem, q, time.Hour), q
}

func TestTaxonomyCache_Choices(t *testing.T) {
	tc, q := newTaxonomyFixture(t)
	ctx := context.Background()
	now := time.Now()

	_, err := q.CreateCategory(ctx, store.CreateCategoryParams{Title: "Travel", Slug: "travel", IsPublished: true, CreatedAt: now})
	require.NoError(t, err)
	_, err = q.CreateLocation(ctx, store.CreateLocationParams{Name: "Earth", IsPublished: true, CreatedAt: now})
	require.NoError(t, err)
	_, err = q.CreateLocation(ctx, store.CreateLocationParams{Name: "Hidden", IsPublished: false, CreatedAt: now})
	require.NoError(t, err)

	choices, err := tc.Choices(ctx)
	require.NoError(t, err)
	assert.Len(t, choices.Categories, 1)
	require.Len(t, choices.Locations, 1)
	assert.Equal(t, "Earth", choices.Locations[0].Name)

	// cached until invalidated
	_, err = q.CreateCategory(ctx, store.CreateCategoryParams{Title: "Food", Slug: "food", IsPublished: true, CreatedAt: now})
	require.NoError(t, err)

	choices, err = tc.Choices(ctx)
	require.NoError(t, err)
	assert.Len(t, choices.Categories, 1)

	tc.Invalidate(ctx)

	choices, err = tc.Choices(ctx)
	require.NoError(t, err)
	assert.Len(t, choices.Categories, 2)
}

func TestTaxonomyCache_PublishedCategory(t *testing.T) {
	tc, q := newTaxonomyFixture(t)
	ctx := context.Background()

	_, err := q.CreateCategory(ctx, store.CreateCategoryParams{Title: "Travel", Slug: "travel", IsPublished: true, CreatedAt: time.Now()})
	require.NoError(t, err)
	hidden, err := q.CreateCategory(ctx, store.CreateCategoryParams{Title: "Drafts", Slug: "drafts", IsPublished: false, CreatedAt: time.Now()})
	require.NoError(t, err)

	got, err := tc.PublishedCategory(ctx, "travel")
	require.NoError(t, err)
	assert.Equal(t, "Travel", got.Title)

	_, err = tc.PublishedCategory(ctx, "drafts")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = tc.PublishedCategory(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// publishing the category is visible after invalidation
	_, err = q.UpdateCategory(ctx, store.UpdateCategoryParams{
		Title:       hidden.Title,
		Description: hidden.Description,
		Slug:        hidden.Slug,
		IsPublished: true,
		ID:          hidden.ID,
	})
	require.NoError(t, err)
	tc.Invalidate(ctx)

	got, err = tc.PublishedCategory(ctx, "drafts")
	require.NoError(t, err)
	assert.Equal(t, hidden.ID, got.ID)
}
