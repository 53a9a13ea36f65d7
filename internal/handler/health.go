// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/internal/version"
)

// Health check statuses.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

const (
	checkTimeout = 2 * time.Second
	minFreeDisk  = 100 << 20
)

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// HealthStatus is the detailed health report shown to logged-in callers.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// SystemInfo contains runtime figures for ?verbose=true.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

type namedCheck struct {
	name string
	run  func(context.Context) Check
}

// HealthHandler serves /health, /health/live and /health/ready.
type HealthHandler struct {
	db        *sql.DB
	mediaDir  string
	startTime time.Time
	checks    []namedCheck
}

// NewHealthHandler creates a new health handler. mediaDir is the local
// image directory; pass "" when images live in a bucket.
func NewHealthHandler(db *sql.DB, mediaDir string) *HealthHandler {
	h := &HealthHandler{db: db, mediaDir: mediaDir, startTime: time.Now()}
	h.checks = []namedCheck{
		{"database", h.checkDatabase},
		{"disk", func(context.Context) Check { return h.checkDiskSpace() }},
		{"content", h.checkContent},
	}
	return h
}

// StartTime returns when the handler (and application) was started.
func (h *HealthHandler) StartTime() time.Time {
	return h.startTime
}

// run executes every check. Any failing check degrades the overall status.
func (h *HealthHandler) run(ctx context.Context) (string, map[string]Check) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	overall := statusHealthy
	results := make(map[string]Check, len(h.checks))
	for _, c := range h.checks {
		res := c.run(ctx)
		results[c.name] = res
		if res.Status != statusHealthy {
			overall = statusDegraded
		}
	}
	return overall, results
}

// Health handles GET /health. Anonymous callers only get the overall status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	overall, checks := h.run(r.Context())

	code := http.StatusOK
	if overall != statusHealthy {
		code = http.StatusServiceUnavailable
	}

	if middleware.GetUser(r) == nil {
		writeJSON(w, code, map[string]string{"status": overall})
		return
	}

	report := HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   version.Version,
		Checks:    checks,
	}
	if r.URL.Query().Get("verbose") == "true" {
		report.System = systemInfo()
	}
	writeJSON(w, code, report)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready. Only the database gates readiness.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	db := h.checkDatabase(ctx)
	if db.Status == statusHealthy {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	resp := map[string]string{"status": "not_ready"}
	if middleware.GetUser(r) != nil {
		resp["message"] = db.Message
	}
	writeJSON(w, http.StatusServiceUnavailable, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	start := time.Now()
	err := h.db.PingContext(ctx)
	latency := time.Since(start).String()
	if err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency}
	}
	return Check{Status: statusHealthy, Message: "Connected", Latency: latency}
}

// checkContent reports how many authors and visible posts the blog has.
func (h *HealthHandler) checkContent(ctx context.Context) Check {
	q := store.New(h.db)
	users, err := q.CountUsers(ctx)
	if err != nil {
		return Check{Status: statusUnhealthy, Message: "Counting users: " + err.Error()}
	}
	posts, err := q.CountPublishedPosts(ctx, time.Now())
	if err != nil {
		return Check{Status: statusUnhealthy, Message: "Counting posts: " + err.Error()}
	}
	return Check{Status: statusHealthy, Message: fmt.Sprintf("%d users, %d published posts", users, posts)}
}

// checkDiskSpace reports free space under the local media directory.
func (h *HealthHandler) checkDiskSpace() Check {
	if h.mediaDir == "" {
		return Check{Status: statusHealthy, Message: "Images are stored in object storage"}
	}
	if _, err := os.Stat(h.mediaDir); errors.Is(err, fs.ErrNotExist) {
		return Check{Status: statusHealthy, Message: "Media directory does not exist yet"}
	}

	var st syscall.Statfs_t
	if err := syscall.Statfs(h.mediaDir, &st); err != nil {
		return Check{Status: statusUnhealthy, Message: "Failed to check disk space: " + err.Error()}
	}

	free := st.Bavail * uint64(st.Bsize) //nolint:gosec // block size is positive
	if free < minFreeDisk {
		return Check{Status: statusDegraded, Message: "Low disk space: " + formatBytes(free) + " available"}
	}
	return Check{Status: statusHealthy, Message: formatBytes(free) + " available"}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes renders a size with binary units.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit && exp < 2; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}
