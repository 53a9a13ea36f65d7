// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/model"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/service"
	"github.com/olegiv/blogicum/internal/store"
)

// AuthHandler handles login, logout and registration.
type AuthHandler struct {
	blog            *blog.Service
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil to disable
// account lockout.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, svc *blog.Service, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		blog:            svc,
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// safeNext returns next when it is a local path, and "/" otherwise.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return redirectHome
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return redirectHome
	}
	return next
}

// LoginForm handles GET /auth/login/. Logged-in users go straight to next.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
		return
	}

	h.renderLogin(w, r, render.NewForm(url.Values{"next": {next}}), "")
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, form *render.Form, message string) {
	if message != "" {
		form.WithErrors(map[string]string{render.NonFieldErrors: message})
	}
	renderForm(w, r, h.renderer, "auth/login", "Log in", form, nil)
}

// Login handles POST /auth/login/.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, render.NewForm(nil), "Invalid form data.")
		return
	}

	form := render.NewForm(url.Values{
		"next":     {r.PostForm.Get("next")},
		"username": {strings.TrimSpace(r.PostForm.Get("username"))},
	})
	username := form.Get("username")
	password := r.PostForm.Get("password")

	if username == "" || password == "" {
		h.renderLogin(w, r, form, "Please enter a username and password.")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.Locked(username); locked {
			_ = h.eventService.Record(r.Context(), requestEvent(r, model.EventLevelWarning, model.EventCategoryAuth, "Login attempt on locked account", map[string]any{"username": username}))
			h.renderLogin(w, r, form, fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	user, err := h.blog.Authenticate(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, blog.ErrInvalidCredentials) {
			h.renderer.ServerError(w, r, fmt.Errorf("authenticating %q: %w", username, err))
			return
		}

		slog.Debug("failed login attempt", "username", username)
		_ = h.eventService.Record(r.Context(), requestEvent(r, model.EventLevelWarning, model.EventCategoryAuth, "Login failed", map[string]any{"username": username}))
		h.renderLogin(w, r, form, h.failedLoginMessage(r, username))
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.Reset(username)
	}

	if err := h.startSession(r, user); err != nil {
		h.renderer.ServerError(w, r, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	ev := requestEvent(r, model.EventLevelInfo, model.EventCategoryAuth, "User logged in", nil)
	ev.UserID = &user.ID
	_ = h.eventService.Record(r.Context(), ev)

	http.Redirect(w, r, safeNext(form.Get("next")), http.StatusSeeOther)
}

// failedLoginMessage records a failed attempt and returns the message
// shown above the form.
func (h *AuthHandler) failedLoginMessage(r *http.Request, username string) string {
	const invalid = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	if h.loginProtection == nil {
		return invalid
	}

	if locked, lockDuration := h.loginProtection.Fail(username); locked {
		_ = h.eventService.Record(r.Context(), requestEvent(r, model.EventLevelWarning, model.EventCategoryAuth, "Account locked due to failed attempts", map[string]any{
			"username": username,
			"duration": lockDuration.String(),
		}))
		return fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration))
	}
	if remaining := h.loginProtection.Remaining(username); remaining > 0 && remaining <= 3 {
		return fmt.Sprintf("%s %d attempts remaining.", invalid, remaining)
	}
	return invalid
}

// startSession renews the session token and stores the user ID.
func (h *AuthHandler) startSession(r *http.Request, user *store.User) error {
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		return fmt.Errorf("renewing session: %w", err)
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)
	return nil
}

// Logout handles POST /auth/logout/.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID > 0 {
		_ = h.eventService.Record(r.Context(), requestEvent(r, model.EventLevelInfo, model.EventCategoryAuth, "User logged out", nil))
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)
	flashInfo(w, r, h.renderer, redirectHome, "You have been logged out.")
}

// RegistrationForm handles GET /auth/registration/.
func (h *AuthHandler) RegistrationForm(w http.ResponseWriter, r *http.Request) {
	renderForm(w, r, h.renderer, "auth/registration", "Sign up", nil, nil)
}

// Register handles POST /auth/registration/. A new account is logged in
// and sent to its profile.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.ServerError(w, r, fmt.Errorf("parsing registration form: %w", err))
		return
	}

	form := render.NewForm(url.Values{
		"username": {r.PostForm.Get("username")},
		"email":    {r.PostForm.Get("email")},
	})

	user, err := h.blog.Register(r.Context(), blog.Registration{
		Username:        form.Get("username"),
		Email:           form.Get("email"),
		Password:        r.PostForm.Get("password"),
		PasswordConfirm: r.PostForm.Get("password_confirm"),
	})
	if err != nil {
		if fields := blog.FieldErrors(err); fields != nil {
			renderForm(w, r, h.renderer, "auth/registration", "Sign up", form.WithErrors(fields), nil)
			return
		}
		h.renderer.ServerError(w, r, fmt.Errorf("registering user: %w", err))
		return
	}

	if err := h.startSession(r, user); err != nil {
		h.renderer.ServerError(w, r, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	ev := requestEvent(r, model.EventLevelInfo, model.EventCategoryUser, "User registered", map[string]any{"username": user.Username})
	ev.UserID = &user.ID
	_ = h.eventService.Record(r.Context(), ev)

	flashSuccess(w, r, h.renderer, render.ProfileURL(user.Username), "Welcome to Blogicum!")
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
