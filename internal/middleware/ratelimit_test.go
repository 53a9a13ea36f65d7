// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func postFrom(handler http.Handler, remoteAddr string, headers map[string]string) int {
	req := httptest.NewRequest(http.MethodPost, "/posts/1/comment/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiter(t *testing.T) {
	handler := NewRateLimiter(0.001, 2).Middleware()(okHandler())

	assert.Equal(t, http.StatusOK, postFrom(handler, "192.168.1.1:12345", nil))
	assert.Equal(t, http.StatusOK, postFrom(handler, "192.168.1.1:12346", nil))
	assert.Equal(t, http.StatusTooManyRequests, postFrom(handler, "192.168.1.1:12347", nil))

	// other clients keep their own budget
	assert.Equal(t, http.StatusOK, postFrom(handler, "192.168.1.2:12345", nil))
}

func TestRateLimiter_SkipsSafeMethods(t *testing.T) {
	handler := NewRateLimiter(0.001, 1).Middleware()(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/posts/1/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_ProxyHeaders(t *testing.T) {
	handler := NewRateLimiter(0.001, 1).Middleware()(okHandler())

	realIP := map[string]string{"X-Real-IP": "10.0.0.1"}
	assert.Equal(t, http.StatusOK, postFrom(handler, "127.0.0.1:1", realIP))
	assert.Equal(t, http.StatusTooManyRequests, postFrom(handler, "127.0.0.1:2", realIP))

	fwd := map[string]string{"X-Forwarded-For": "10.0.0.2, 127.0.0.1"}
	assert.Equal(t, http.StatusOK, postFrom(handler, "127.0.0.1:3", fwd))
	assert.Equal(t, http.StatusTooManyRequests, postFrom(handler, "127.0.0.1:4", fwd))
}

func TestIPLimiters_Prune(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newIPLimiters(1, 1, func() time.Time { return now })

	l.allow("10.0.0.1")
	now = now.Add(20 * time.Minute)
	l.allow("10.0.0.2")
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, l.prune(30*time.Minute))
	assert.Len(t, l.clients, 1)
	assert.Contains(t, l.clients, "10.0.0.2")
}

func TestIPLimiters_Refill(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newIPLimiters(1, 1, func() time.Time { return now })

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	now = now.Add(time.Second)
	assert.True(t, l.allow("10.0.0.1"))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xForwarded string
		xRealIP    string
		want       string
	}{
		{"simple remote addr", "192.168.1.1:12345", "", "", "192.168.1.1"},
		{"remote addr without port", "192.168.1.1", "", "", "192.168.1.1"},
		{"X-Forwarded-For single", "127.0.0.1:8080", "10.0.0.1", "", "10.0.0.1"},
		{"X-Forwarded-For multiple", "127.0.0.1:8080", "10.0.0.1, 10.0.0.2, 10.0.0.3", "", "10.0.0.1"},
		{"X-Real-IP", "127.0.0.1:8080", "", "10.0.0.5", "10.0.0.5"},
		{"X-Forwarded-For takes precedence over X-Real-IP", "127.0.0.1:8080", "10.0.0.1", "10.0.0.5", "10.0.0.1"},
		{"X-Forwarded-For with spaces", "127.0.0.1:8080", "  10.0.0.1  ", "", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwarded)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}
