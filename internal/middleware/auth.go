// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// security headers, CSRF, rate limiting and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/blogicum/internal/store"
)

type (
	userKey        struct{}
	requestPathKey struct{}
)

// SessionKeyUserID holds the logged-in user's ID in the session.
const SessionKeyUserID = "user_id"

// LoginURL is where anonymous users are sent.
const LoginURL = "/auth/login/"

// LoadUser resolves the session's user ID into a store.User for the rest of
// the chain. A session pointing at a deleted user is cleared and the request
// continues anonymously; other lookup errors are logged and also fall back
// to anonymous.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := sm.GetInt64(ctx, SessionKeyUserID); id != 0 {
				switch user, err := queries.GetUserByID(ctx, id); {
				case err == nil:
					r = r.WithContext(WithUser(ctx, user))
				case errors.Is(err, sql.ErrNoRows):
					sm.Remove(ctx, SessionKeyUserID)
				default:
					slog.ErrorContext(ctx, "failed to load session user", "user_id", id, "error", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth sends anonymous users to the login page with ?next= set to
// the requested URL.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r) != nil {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, LoginRedirectURL(r), http.StatusSeeOther)
	})
}

// LoginRedirectURL returns the login URL that brings the user back to r.
func LoginRedirectURL(r *http.Request) string {
	q := url.Values{}
	q.Set("next", r.URL.RequestURI())
	return LoginURL + "?" + q.Encode()
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user store.User) context.Context {
	return context.WithValue(ctx, userKey{}, &user)
}

// GetUser returns the logged-in user, or nil for anonymous requests.
func GetUser(r *http.Request) *store.User {
	u, _ := r.Context().Value(userKey{}).(*store.User)
	return u
}

// GetUserID is the logged-in user's ID, or 0.
func GetUserID(r *http.Request) int64 {
	if u := GetUser(r); u != nil {
		return u.ID
	}
	return 0
}

// GetUserIDPtr is GetUserID for optional columns: nil when anonymous.
func GetUserIDPtr(r *http.Request) *int64 {
	u := GetUser(r)
	if u == nil {
		return nil
	}
	id := u.ID
	return &id
}

// RequestPath records r.URL.Path in the context for log records written
// further down the chain.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestPathKey{}, r.URL.Path)))
	})
}

// GetRequestPath returns the path stored by RequestPath, or "".
func GetRequestPath(ctx context.Context) string {
	p, _ := ctx.Value(requestPathKey{}).(string)
	return p
}
