// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// maxLockout caps the doubling lockout period.
const maxLockout = 24 * time.Hour

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is login POSTs per second per client IP.
	IPRateLimit float64
	IPBurst     int

	// MaxFailedAttempts within AttemptWindow lock the account.
	MaxFailedAttempts int
	AttemptWindow     time.Duration

	// LockoutDuration is the first lockout; each further lockout doubles it.
	LockoutDuration time.Duration
}

// DefaultLoginProtectionConfig returns the production settings.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		AttemptWindow:     15 * time.Minute,
		LockoutDuration:   15 * time.Minute,
	}
}

func (c *LoginProtectionConfig) applyDefaults() {
	def := DefaultLoginProtectionConfig()
	if c.IPRateLimit <= 0 {
		c.IPRateLimit = def.IPRateLimit
	}
	if c.IPBurst <= 0 {
		c.IPBurst = def.IPBurst
	}
	if c.MaxFailedAttempts <= 0 {
		c.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if c.AttemptWindow <= 0 {
		c.AttemptWindow = def.AttemptWindow
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = def.LockoutDuration
	}
}

// accountState is the failure history of one username.
type accountState struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtection throttles login POSTs per IP and locks usernames after
// repeated failures.
type LoginProtection struct {
	cfg LoginProtectionConfig
	ips *ipLimiters
	now func() time.Time

	mu       sync.Mutex
	accounts map[string]*accountState
}

// NewLoginProtection creates a LoginProtection and starts its sweeper.
// Zero config fields fall back to DefaultLoginProtectionConfig.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	lp := newLoginProtection(cfg, time.Now)
	go lp.sweepLoop(10 * time.Minute)
	return lp
}

func newLoginProtection(cfg LoginProtectionConfig, now func() time.Time) *LoginProtection {
	cfg.applyDefaults()
	return &LoginProtection{
		cfg:      cfg,
		ips:      newIPLimiters(cfg.IPRateLimit, cfg.IPBurst, now),
		now:      now,
		accounts: make(map[string]*accountState),
	}
}

// accountKey folds case so "Alice" and "alice" share one lockout.
func accountKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// lockoutFor returns the lockout period after n earlier lockouts.
func (lp *LoginProtection) lockoutFor(n int) time.Duration {
	d := lp.cfg.LockoutDuration
	for range n {
		d *= 2
		if d >= maxLockout {
			return maxLockout
		}
	}
	return d
}

// Locked reports whether username is locked and for how much longer.
func (lp *LoginProtection) Locked(username string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[accountKey(username)]
	if !ok {
		return false, 0
	}
	if left := st.lockedUntil.Sub(lp.now()); left > 0 {
		return true, left
	}
	return false, 0
}

// Fail records a failed login. When the failure locks the account it
// returns true and the lockout period.
func (lp *LoginProtection) Fail(username string) (bool, time.Duration) {
	key := accountKey(username)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[key]
	if !ok {
		st = &accountState{}
		lp.accounts[key] = st
	}
	if st.failures == 0 || now.Sub(st.windowStart) > lp.cfg.AttemptWindow {
		st.failures = 0
		st.windowStart = now
	}
	st.failures++

	if st.failures < lp.cfg.MaxFailedAttempts {
		slog.Debug("failed login recorded", "username", key, "failures", st.failures)
		return false, 0
	}

	d := lp.lockoutFor(st.lockouts)
	st.lockedUntil = now.Add(d)
	st.lockouts++
	st.failures = 0
	slog.Warn("account locked", "username", key, "lockouts", st.lockouts, "duration", d)
	return true, d
}

// Remaining returns how many failures username may still make before
// being locked.
func (lp *LoginProtection) Remaining(username string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[accountKey(username)]
	if !ok || lp.now().Sub(st.windowStart) > lp.cfg.AttemptWindow {
		return lp.cfg.MaxFailedAttempts
	}
	return max(lp.cfg.MaxFailedAttempts-st.failures, 0)
}

// Reset forgets the failure history of username after a successful login.
func (lp *LoginProtection) Reset(username string) {
	lp.mu.Lock()
	delete(lp.accounts, accountKey(username))
	lp.mu.Unlock()
}

func (lp *LoginProtection) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		lp.sweep()
	}
}

// sweep drops idle IP buckets and accounts with no active lockout and no
// recent failures.
func (lp *LoginProtection) sweep() {
	lp.ips.prune(idleLimiterTTL)

	now := lp.now()
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for key, st := range lp.accounts {
		if !now.Before(st.lockedUntil) && now.Sub(st.windowStart) > lp.cfg.AttemptWindow {
			delete(lp.accounts, key)
		}
	}
}

// Middleware throttles login POSTs per client IP with 429 and a
// Retry-After hint. Other methods pass through.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(max(int(1/lp.cfg.IPRateLimit), 1))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := GetClientIP(r)
			if !lp.ips.allow(ip) {
				slog.Warn("login rate limit exceeded", "ip", ip)
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "Too many login attempts. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
