// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blogicum/internal/session"
)

func loginForm(username, password, next string) url.Values {
	return url.Values{"username": {username}, "password": {password}, "next": {next}}
}

func TestLoginForm(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	rr := env.get("/auth/login/?next=/posts/create/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `value="/posts/create/"`)

	rr = env.get("/auth/login/?next=/posts/create/", alice)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/posts/create/", rr.Header().Get("Location"))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "alice")

	tests := []struct {
		name     string
		next     string
		wantNext string
	}{
		{"local next", "/posts/create/", "/posts/create/"},
		{"no next", "", "/"},
		{"external next", "https://evil.example/", "/"},
		{"protocol relative next", "//evil.example/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.post("/auth/login/", loginForm("alice", testPassword, tt.next), nil)
			assert.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, tt.wantNext, rr.Header().Get("Location"))

			var found bool
			for _, c := range rr.Result().Cookies() {
				if c.Name == session.CookieName && c.Value != "" {
					found = true
				}
			}
			assert.True(t, found, "session cookie not set")
		})
	}

	user, err := env.queries.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, user.LastLoginAt.Valid)
}

func TestLogin_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "alice")

	tests := []struct {
		name     string
		username string
		password string
		want     string
	}{
		{"empty fields", "", "", "Please enter a username and password."},
		{"wrong password", "alice", "nope-nope-nope", "Please enter a correct username and password."},
		{"unknown user", "nobody", testPassword, "Please enter a correct username and password."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.post("/auth/login/", loginForm(tt.username, tt.password, ""), nil)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.want)
		})
	}
}

func TestLogin_Lockout(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "alice")

	rr := env.post("/auth/login/", loginForm("alice", "wrong-password-1", ""), nil)
	assert.NotContains(t, rr.Body.String(), "attempts remaining")
	for range 4 {
		rr = env.post("/auth/login/", loginForm("alice", "wrong-password-1", ""), nil)
	}
	assert.Contains(t, rr.Body.String(), "Too many failed attempts.")

	// the right password does not help while the account is locked
	rr = env.post("/auth/login/", loginForm("alice", testPassword, ""), nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Too many failed attempts.")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	rr := env.post("/auth/logout/", url.Values{}, alice)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestRegistration(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get("/auth/registration/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Sign up")

	rr = env.post("/auth/registration/", url.Values{
		"username":         {"carol"},
		"email":            {"carol@example.com"},
		"password":         {testPassword},
		"password_confirm": {testPassword},
	}, nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/profile/carol/", rr.Header().Get("Location"))

	user, err := env.queries.GetUserByUsername(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", user.Email)
	assert.NotEqual(t, testPassword, user.PasswordHash)
}

func TestRegistration_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "alice")

	tests := []struct {
		name    string
		form    url.Values
		wantErr string
	}{
		{
			name:    "password mismatch",
			form:    url.Values{"username": {"carol"}, "password": {testPassword}, "password_confirm": {"different-words-here"}},
			wantErr: "The two password fields didn",
		},
		{
			name:    "taken username",
			form:    url.Values{"username": {"alice"}, "password": {testPassword}, "password_confirm": {testPassword}},
			wantErr: "A user with that username already exists.",
		},
		{
			name:    "numeric password",
			form:    url.Values{"username": {"carol"}, "password": {"9876543210"}, "password_confirm": {"9876543210"}},
			wantErr: "password cannot be entirely numeric",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.post("/auth/registration/", tt.form, nil)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantErr)
		})
	}

	count, err := env.queries.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                     "/",
		"/":                    "/",
		"/posts/1/":            "/posts/1/",
		"/profile/a/?page=2":   "/profile/a/?page=2",
		"https://evil.example": "/",
		"//evil.example":       "/",
		"/\\evil.example":      "/",
		"posts/1/":             "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), in)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30 seconds"},
		{time.Minute, "1 minute"},
		{15 * time.Minute, "15 minutes"},
		{time.Hour, "1 hour"},
		{3 * time.Hour, "3 hours"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}
