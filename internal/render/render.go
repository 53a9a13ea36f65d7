// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the embedded HTML templates and renders pages
// inside the shared base layout.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/store"
)

const baseLayout = "layouts/base.html"

// pageDirs are the template directories rendered inside the base layout.
var pageDirs = []string{"blog", "users", "auth", "pages", "errors"}

// Session keys for flash messages.
const (
	sessionKeyFlash     = "flash"
	sessionKeyFlashType = "flash_type"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	imageURL       func(string) string
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	// ImageURL maps a stored image path to its public URL.
	ImageURL func(string) string
	IsDev    bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		imageURL:       cfg.ImageURL,
		isDev:          cfg.IsDev,
	}
	if r.imageURL == nil {
		r.imageURL = func(key string) string { return key }
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses every page template with the base layout and partials.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	for _, dir := range pageDirs {
		pages, err := templateFiles(templatesFS, dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", dir, err)
		}

		for _, tmplPath := range pages {
			name := dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			files := []string{baseLayout}
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}

			r.templates[name] = tmpl
		}
	}

	return nil
}

// templateFiles returns all .html files in a directory. A missing
// directory yields no files.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// Has reports whether a template with the given name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	User        *store.User
	Data        any
	Form        *Form
	Flash       string
	FlashType   string
	CSRFField   template.HTML
	CurrentPath string
	CurrentYear int
}

// Render renders a page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page inside the base layout with the given status.
// The page is executed into a buffer first so a template error never
// leaves a half-written response.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	data.CurrentPath = req.URL.Path
	if data.User == nil {
		data.User = middleware.GetUser(req)
	}
	if data.CSRFField == "" {
		data.CSRFField = template.HTML(middleware.CSRFField(req)) //nolint:gosec // generated by the csrf library
	}
	if data.Form == nil {
		data.Form = NewForm(nil)
	}
	r.popFlash(req, &data)

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// popFlash moves a pending flash message from the session into data.
// Requests outside the session middleware carry no flash.
func (r *Renderer) popFlash(req *http.Request, data *TemplateData) {
	if r.sessionManager == nil {
		return
	}
	defer func() {
		// scs panics when the session was not loaded for this request
		_ = recover()
	}()

	if flash := r.sessionManager.PopString(req.Context(), sessionKeyFlash); flash != "" {
		data.Flash = flash
		data.FlashType = r.sessionManager.PopString(req.Context(), sessionKeyFlashType)
		if data.FlashType == "" {
			data.FlashType = "info"
		}
	}
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), sessionKeyFlash, message)
		r.sessionManager.Put(req.Context(), sessionKeyFlashType, flashType)
	}
}

// NotFound renders the 404 page.
func (r *Renderer) NotFound(w http.ResponseWriter, req *http.Request) {
	r.renderError(w, req, http.StatusNotFound, "errors/404", TemplateData{Title: "Page not found"})
}

// ServerError logs err and renders the 500 page. Development builds show
// the error text on the page.
func (r *Renderer) ServerError(w http.ResponseWriter, req *http.Request, err error) {
	slog.Error("request failed", "method", req.Method, "path", req.URL.Path, "error", err)

	data := TemplateData{Title: "Server error"}
	if r.isDev {
		data.Data = err.Error()
	}
	r.renderError(w, req, http.StatusInternalServerError, "errors/500", data)
}

// CSRFFailure renders the 403 page shown when a form fails CSRF validation.
func (r *Renderer) CSRFFailure(w http.ResponseWriter, req *http.Request) {
	r.renderError(w, req, http.StatusForbidden, "errors/403csrf", TemplateData{Title: "Forbidden"})
}

// renderError renders an error page, falling back to plain text.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) {
	if err := r.RenderStatus(w, req, status, name, data); err != nil {
		slog.Error("failed to render error page", "template", name, "error", err)
		http.Error(w, http.StatusText(status), status)
	}
}
