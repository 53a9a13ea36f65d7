// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/model"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/service"
)

// ProfileHandler handles editing the current user's profile.
type ProfileHandler struct {
	blog         *blog.Service
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(db *sql.DB, renderer *render.Renderer, svc *blog.Service) *ProfileHandler {
	return &ProfileHandler{
		blog:         svc,
		renderer:     renderer,
		eventService: service.NewEventService(db),
	}
}

// profileFields are the editable profile form fields.
var profileFields = []string{"username", "first_name", "last_name", "email"}

// EditForm handles GET /profile/edit/.
func (h *ProfileHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	form := render.NewForm(url.Values{
		"username":   {user.Username},
		"first_name": {user.FirstName},
		"last_name":  {user.LastName},
		"email":      {user.Email},
	})
	renderForm(w, r, h.renderer, "users/profile_edit", "Edit profile", form, nil)
}

// Edit handles POST /profile/edit/. The user always comes from the
// session, never from the URL.
func (h *ProfileHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if err := r.ParseForm(); err != nil {
		h.renderer.ServerError(w, r, fmt.Errorf("parsing profile form: %w", err))
		return
	}

	values := url.Values{}
	for _, field := range profileFields {
		values.Set(field, r.PostForm.Get(field))
	}
	form := render.NewForm(values)

	updated, err := h.blog.UpdateProfile(r.Context(), user.ID, blog.ProfileInput{
		Username:  form.Get("username"),
		FirstName: form.Get("first_name"),
		LastName:  form.Get("last_name"),
		Email:     form.Get("email"),
	})
	if err != nil {
		if fields := blog.FieldErrors(err); fields != nil {
			renderForm(w, r, h.renderer, "users/profile_edit", "Edit profile", form.WithErrors(fields), nil)
			return
		}
		handleServiceError(w, r, h.renderer, "updating profile", 0, err)
		return
	}

	slog.Info("profile updated", "user_id", updated.ID, "username", updated.Username)
	_ = h.eventService.Record(r.Context(), requestEvent(r, model.EventLevelInfo, model.EventCategoryUser, "Profile updated", map[string]any{
		"username":     updated.Username,
		"old_username": user.Username,
	}))

	flashSuccess(w, r, h.renderer, render.ProfileURL(updated.Username), "Profile saved.")
}
