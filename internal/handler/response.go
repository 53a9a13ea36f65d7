// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/service"
	"github.com/olegiv/blogicum/internal/util"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeSuccess)
}

// flashInfo sets an info flash message and redirects to the given URL.
func flashInfo(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeInfo)
}

// parseIDParam reads a positive integer URL parameter. Anything else
// renders the 404 page.
func parseIDParam(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, name string) (int64, bool) {
	id, ok := util.ParsePositiveID(chi.URLParam(r, name))
	if !ok {
		renderer.NotFound(w, r)
		return 0, false
	}
	return id, true
}

// errResponseWritten tells handleServiceError that the response is
// already on its way.
var errResponseWritten = errors.New("response written")

// isNotFound reports whether err means the requested record does not
// exist or is hidden from the viewer.
func isNotFound(err error) bool {
	return errors.Is(err, blog.ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

// requireEntity runs fetch and writes the error response when it fails:
// the 404 page for missing records, the 500 page for everything else.
// Returns the entity and true if successful, or the zero value and false
// if a response was already written.
//
// Example usage:
//
//	feed, ok := requireEntity(w, r, h.renderer, "category", func() (*blog.CategoryFeed, error) {
//	    return h.blog.CategoryFeed(r.Context(), slug, page)
//	})
func requireEntity[T any](
	w http.ResponseWriter,
	r *http.Request,
	renderer *render.Renderer,
	entityName string,
	fetch func() (T, error),
) (T, bool) {
	entity, err := fetch()
	if err != nil {
		handleServiceError(w, r, renderer, entityName, 0, err)
		var zero T
		return zero, false
	}
	return entity, true
}

// requireAuthor is requireEntity for records only their author may change.
// fetch reports blog.ErrForbidden for anyone else, who is sent back to the
// post detail page.
func requireAuthor[T any](
	w http.ResponseWriter,
	r *http.Request,
	renderer *render.Renderer,
	entityName string,
	postID int64,
	fetch func() (T, error),
) (T, bool) {
	return requireEntity(w, r, renderer, entityName, func() (T, error) {
		entity, err := fetch()
		if errors.Is(err, blog.ErrForbidden) {
			http.Redirect(w, r, render.PostURL(postID), http.StatusSeeOther)
			return entity, errResponseWritten
		}
		return entity, err
	})
}

// handleServiceError maps a service error to a response. ErrForbidden
// redirects to the post detail page when postID is known.
func handleServiceError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, entityName string, postID int64, err error) {
	switch {
	case errors.Is(err, errResponseWritten):
	case isNotFound(err):
		renderer.NotFound(w, r)
	case errors.Is(err, blog.ErrForbidden) && postID > 0:
		http.Redirect(w, r, render.PostURL(postID), http.StatusSeeOther)
	default:
		renderer.ServerError(w, r, fmt.Errorf("%s: %w", entityName, err))
	}
}

// renderForm re-renders a form page with the submitted values and field
// errors. Validation failures are answered with 200 like a fresh form.
func renderForm(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, name, title string, form *render.Form, data any) {
	if err := renderer.Render(w, r, name, render.TemplateData{
		Title: title,
		Form:  form,
		Data:  data,
	}); err != nil {
		renderer.ServerError(w, r, err)
	}
}

// renderPage renders a page without a form.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, name, title string, data any) {
	renderForm(w, r, renderer, name, title, nil, data)
}

// requestEvent builds an audit event for r attributed to the logged-in user.
func requestEvent(r *http.Request, level, category, message string, metadata map[string]any) service.Event {
	return service.Event{
		Level:    level,
		Category: category,
		Message:  message,
		UserID:   middleware.GetUserIDPtr(r),
		IP:       middleware.GetClientIP(r),
		URL:      r.URL.Path,
		Metadata: metadata,
	}
}
