// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/blogicum/internal/render"
)

// PagesHandler serves the static about and rules pages.
type PagesHandler struct {
	renderer *render.Renderer
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(renderer *render.Renderer) *PagesHandler {
	return &PagesHandler{renderer: renderer}
}

// About handles GET /pages/about/.
func (h *PagesHandler) About(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, "pages/about", "About", nil)
}

// Rules handles GET /pages/rules/.
func (h *PagesHandler) Rules(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, "pages/rules", "Rules", nil)
}
