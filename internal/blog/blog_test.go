// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/blogicum/internal/storage"
	"github.com/olegiv/blogicum/internal/store"
)

type testEnv struct {
	db      *sql.DB
	q       *store.Queries
	svc     *Service
	storage *storage.Local
	now     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "blog-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	media, err := storage.NewLocal(filepath.Join(t.TempDir(), "media"), storage.MediaURLPrefix)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	svc := NewService(db, Options{
		PerPage: 3,
		Storage: media,
		Now:     func() time.Time { return now },
	})

	return &testEnv{db: db, q: store.New(db), svc: svc, storage: media, now: now}
}

func (e *testEnv) user(t *testing.T, username string) store.User {
	t.Helper()
	u, err := e.q.CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		PasswordHash: "hash",
		CreatedAt:    e.now,
		UpdatedAt:    e.now,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) category(t *testing.T, slug string, published bool) store.Category {
	t.Helper()
	c, err := e.q.CreateCategory(context.Background(), store.CreateCategoryParams{
		Title:       slug,
		Slug:        slug,
		IsPublished: published,
		CreatedAt:   e.now,
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) location(t *testing.T, name string, published bool) store.Location {
	t.Helper()
	l, err := e.q.CreateLocation(context.Background(), store.CreateLocationParams{
		Name:        name,
		IsPublished: published,
		CreatedAt:   e.now,
	})
	require.NoError(t, err)
	return l
}

type postSpec struct {
	author    int64
	category  int64
	published bool
	pubDate   time.Time
	image     string
}

func (e *testEnv) post(t *testing.T, title string, p postSpec) store.Post {
	t.Helper()
	params := store.CreatePostParams{
		Title:       title,
		Text:        "text of " + title,
		PubDate:     p.pubDate,
		AuthorID:    p.author,
		Image:       p.image,
		IsPublished: p.published,
		CreatedAt:   e.now,
	}
	if params.PubDate.IsZero() {
		params.PubDate = e.now.Add(-time.Hour)
	}
	if p.category != 0 {
		params.CategoryID = sql.NullInt64{Int64: p.category, Valid: true}
	}
	post, err := e.q.CreatePost(context.Background(), params)
	require.NoError(t, err)
	return post
}

func (e *testEnv) comment(t *testing.T, postID, authorID int64, text string) store.Comment {
	t.Helper()
	c, err := e.q.CreateComment(context.Background(), store.CreateCommentParams{
		Text:      text,
		AuthorID:  authorID,
		PostID:    postID,
		CreatedAt: e.now,
	})
	require.NoError(t, err)
	return c
}

func feedTitles(rows []store.PostFeedRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Title)
	}
	return out
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
