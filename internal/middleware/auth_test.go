// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blogicum/internal/store"
)

func TestGetUser(t *testing.T) {
	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Nil(t, GetUser(req))
		assert.Zero(t, GetUserID(req))
		assert.Nil(t, GetUserIDPtr(req))
	})

	t.Run("user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUser(req.Context(), store.User{ID: 789, Username: "alice"}))

		user := GetUser(req)
		require.NotNil(t, user)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, int64(789), GetUserID(req))

		idPtr := GetUserIDPtr(req)
		require.NotNil(t, idPtr)
		assert.Equal(t, int64(789), *idPtr)
	})

	t.Run("wrong type in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), userKey{}, "alice"))
		assert.Nil(t, GetUser(req))
	})

	t.Run("copies are independent", func(t *testing.T) {
		u := store.User{ID: 5, Username: "bob"}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUser(req.Context(), u))
		u.Username = "mallory"
		assert.Equal(t, "bob", GetUser(req).Username)
	})
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous is redirected with next", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts/create/?draft=1", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/auth/login/?next=%2Fposts%2Fcreate%2F%3Fdraft%3D1", rr.Header().Get("Location"))
	})

	t.Run("logged in passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts/create/", nil)
		req = req.WithContext(WithUser(req.Context(), store.User{ID: 1}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRequestPath(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetRequestPath(r.Context())))
	})

	req := httptest.NewRequest(http.MethodGet, "/posts/3/", nil)
	rr := httptest.NewRecorder()
	RequestPath(handler).ServeHTTP(rr, req)

	assert.Equal(t, "/posts/3/", rr.Body.String())
}

func TestGetRequestPath(t *testing.T) {
	assert.Empty(t, GetRequestPath(context.Background()))

	ctx := context.WithValue(context.Background(), requestPathKey{}, "/test/path")
	assert.Equal(t, "/test/path", GetRequestPath(ctx))
}
