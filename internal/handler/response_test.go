// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/render"
)

// plainRenderer has no templates, so error pages fall back to plain text.
func plainRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New(render.Config{TemplatesFS: fstest.MapFS{}})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return r
}

func TestRequireEntity(t *testing.T) {
	renderer := plainRenderer(t)

	tests := []struct {
		name       string
		err        error
		wantOK     bool
		wantStatus int
	}{
		{"found", nil, true, http.StatusOK},
		{"no rows", sql.ErrNoRows, false, http.StatusNotFound},
		{"hidden", fmt.Errorf("post 3: %w", blog.ErrNotFound), false, http.StatusNotFound},
		{"forbidden without post", blog.ErrForbidden, false, http.StatusInternalServerError},
		{"database error", errors.New("disk I/O error"), false, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/posts/3/", nil)

			got, ok := requireEntity(w, r, renderer, "post", func() (string, error) {
				if tt.err != nil {
					return "", tt.err
				}
				return "post", nil
			})

			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ok && got != "post" {
				t.Errorf("entity = %q, want %q", got, "post")
			}
			if !ok && got != "" {
				t.Errorf("entity = %q, want zero value", got)
			}
		})
	}
}

func TestRequireAuthor_RedirectsToPost(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/posts/7/edit/", nil)

	_, ok := requireAuthor(w, r, plainRenderer(t), "post", 7, func() (*blog.PostDetail, error) {
		return nil, blog.ErrForbidden
	})

	if ok {
		t.Fatal("expected requireAuthor to fail")
	}
	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/posts/7/" {
		t.Errorf("Location = %q, want /posts/7/", loc)
	}
}

func TestRequireAuthor_DelegatesOtherOutcomes(t *testing.T) {
	renderer := plainRenderer(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/posts/7/edit/", nil)
	got, ok := requireAuthor(w, r, renderer, "post", 7, func() (string, error) { return "mine", nil })
	if !ok || got != "mine" {
		t.Fatalf("got (%q, %v), want (mine, true)", got, ok)
	}

	w = httptest.NewRecorder()
	_, ok = requireAuthor(w, r, renderer, "post", 7, func() (string, error) { return "", blog.ErrNotFound })
	if ok {
		t.Fatal("expected requireAuthor to fail")
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if loc := w.Header().Get("Location"); loc != "" {
		t.Errorf("Location = %q, want none", loc)
	}
}

func TestParseIDParam(t *testing.T) {
	renderer := plainRenderer(t)

	tests := []struct {
		raw    string
		wantID int64
		wantOK bool
	}{
		{"12", 12, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add(RouteParamPostID, tt.raw)
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			id, ok := parseIDParam(w, r, renderer, RouteParamPostID)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("parseIDParam(%q) = %d, %v; want %d, %v", tt.raw, id, ok, tt.wantID, tt.wantOK)
			}
			if !ok && w.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", w.Code)
			}
		})
	}
}
