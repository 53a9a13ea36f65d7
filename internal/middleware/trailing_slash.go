// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// AppendSlash returns a not-found handler that redirects (HTTP 301) a
// GET or HEAD request for /path to /path/ when the slashed form is a known
// route. Everything else falls through to notFound.
func AppendSlash(routes chi.Routes, notFound http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if (r.Method == http.MethodGet || r.Method == http.MethodHead) &&
			!strings.HasSuffix(path, "/") &&
			routes.Match(chi.NewRouteContext(), r.Method, path+"/") {
			target := path + "/"
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
		notFound.ServeHTTP(w, r)
	}
}
