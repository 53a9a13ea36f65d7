// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blogicum/internal/auth"
	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/session"
	"github.com/olegiv/blogicum/internal/storage"
	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/web"
)

const testPassword = "correct-horse-battery"

// testDB creates a migrated in-memory SQLite database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, store.Migrate(db))
	return db
}

type testEnv struct {
	db       *sql.DB
	queries  *store.Queries
	svc      *blog.Service
	renderer *render.Renderer
	media    *storage.Local
	router   chi.Router
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)

	media, err := storage.NewLocal(filepath.Join(t.TempDir(), "media"), storage.MediaURLPrefix)
	require.NoError(t, err)

	svc := blog.NewService(db, blog.Options{PerPage: 2, Storage: media})
	sm := session.New(db, true)

	templates, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{
		TemplatesFS:    templates,
		SessionManager: sm,
		ImageURL:       svc.ImageURL,
		IsDev:          true,
	})
	require.NoError(t, err)

	hs := Handlers{
		Blog:     NewBlogHandler(db, renderer, svc, 10<<20),
		Comments: NewCommentHandler(db, renderer, svc),
		Profile:  NewProfileHandler(db, renderer, svc),
		Auth:     NewAuthHandler(db, renderer, sm, svc, middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())),
		Pages:    NewPagesHandler(renderer),
		Health:   NewHealthHandler(db, media.Root()),
		SEO:      NewSEOHandler(svc, "https://blog.example.com", false),
	}

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	hs.Register(r)
	r.NotFound(middleware.AppendSlash(r, http.HandlerFunc(renderer.NotFound)))

	return &testEnv{
		db:       db,
		queries:  store.New(db),
		svc:      svc,
		renderer: renderer,
		media:    media,
		router:   r,
		now:      time.Now().UTC().Truncate(time.Second),
	}
}

// serve runs req through the router, acting as user when it is not nil.
func (e *testEnv) serve(req *http.Request, user *store.User) *httptest.ResponseRecorder {
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) get(target string, user *store.User) *httptest.ResponseRecorder {
	return e.serve(httptest.NewRequest(http.MethodGet, target, nil), user)
}

func (e *testEnv) post(target string, form url.Values, user *store.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.serve(req, user)
}

// postMultipart submits form with an optional image file.
func (e *testEnv) postMultipart(t *testing.T, target string, form url.Values, image []byte, user *store.User) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for key, values := range form {
		for _, v := range values {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(image))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.serve(req, user)
}

func (e *testEnv) user(t *testing.T, username string) *store.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	u, err := e.queries.CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		CreatedAt:    e.now,
		UpdatedAt:    e.now,
	})
	require.NoError(t, err)
	return &u
}

func (e *testEnv) category(t *testing.T, slug string, published bool) store.Category {
	t.Helper()
	c, err := e.queries.CreateCategory(context.Background(), store.CreateCategoryParams{
		Title:       "Category " + slug,
		Slug:        slug,
		IsPublished: published,
		CreatedAt:   e.now,
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) location(t *testing.T, name string) store.Location {
	t.Helper()
	l, err := e.queries.CreateLocation(context.Background(), store.CreateLocationParams{
		Name:        name,
		IsPublished: true,
		CreatedAt:   e.now,
	})
	require.NoError(t, err)
	return l
}

type postOpts struct {
	pubDate     time.Time
	unpublished bool
	category    *store.Category
	image       string
}

func (e *testEnv) postBy(t *testing.T, author *store.User, title string, opts postOpts) store.Post {
	t.Helper()
	if opts.pubDate.IsZero() {
		opts.pubDate = e.now.Add(-time.Hour)
	}
	var categoryID sql.NullInt64
	if opts.category != nil {
		categoryID = sql.NullInt64{Int64: opts.category.ID, Valid: true}
	}

	p, err := e.queries.CreatePost(context.Background(), store.CreatePostParams{
		Title:       title,
		Text:        "Text of " + title,
		PubDate:     opts.pubDate,
		AuthorID:    author.ID,
		CategoryID:  categoryID,
		Image:       opts.image,
		IsPublished: !opts.unpublished,
		CreatedAt:   e.now,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) comment(t *testing.T, author *store.User, post store.Post, text string) store.Comment {
	t.Helper()
	c, err := e.queries.CreateComment(context.Background(), store.CreateCommentParams{
		Text:      text,
		AuthorID:  author.ID,
		PostID:    post.ID,
		CreatedAt: e.now,
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) countComments(t *testing.T, postID int64) int64 {
	t.Helper()
	n, err := e.queries.CountCommentsByPost(context.Background(), postID)
	require.NoError(t, err)
	return n
}

// pngImage returns a small valid PNG.
func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 200, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func postPath(id int64) string {
	return render.PostURL(id)
}
