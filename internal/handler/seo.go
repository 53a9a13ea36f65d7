// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/seo"
)

// SEOHandler serves robots.txt and the sitemap.
type SEOHandler struct {
	blog    *blog.Service
	siteURL string
	isDev   bool
}

// NewSEOHandler creates a new SEOHandler. An empty siteURL is derived
// from each request. Development builds ask crawlers to stay away.
func NewSEOHandler(svc *blog.Service, siteURL string, isDev bool) *SEOHandler {
	return &SEOHandler{
		blog:    svc,
		siteURL: siteURL,
		isDev:   isDev,
	}
}

func (h *SEOHandler) baseURL(r *http.Request) string {
	if h.siteURL != "" {
		return h.siteURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// Robots handles GET /robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(seo.BuildRobots(seo.RobotsConfig{
		SiteURL:     h.baseURL(r),
		DisallowAll: h.isDev,
	})))
}

// Sitemap handles GET /sitemap.xml. Only publicly visible content is listed.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	categories, posts, err := h.blog.SitemapContent(r.Context())
	if err != nil {
		slog.Error("building sitemap", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sm := seo.NewSitemap(h.baseURL(r))
	sm.Add(seo.KindHome, RouteRoot, time.Time{})
	sm.Add(seo.KindPage, RoutePageAbout, time.Time{})
	sm.Add(seo.KindPage, RoutePageRules, time.Time{})
	for _, c := range categories {
		sm.Add(seo.KindCategory, render.CategoryURL(c.Slug), time.Time{})
	}
	for _, p := range posts {
		sm.Add(seo.KindPost, render.PostURL(p.ID), p.PubDate)
	}

	data, err := sm.Marshal()
	if err != nil {
		slog.Error("encoding sitemap", "error", fmt.Errorf("%d urls: %w", sm.Len(), err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(data)
}
