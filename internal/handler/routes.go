// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blogicum/internal/middleware"
)

// Handlers bundles the page handlers mounted by Register.
type Handlers struct {
	Blog     *BlogHandler
	Comments *CommentHandler
	Profile  *ProfileHandler
	Auth     *AuthHandler
	Pages    *PagesHandler
	Health   *HealthHandler
	SEO      *SEOHandler

	// LoginLimit throttles login submissions per IP. Optional.
	LoginLimit func(http.Handler) http.Handler
	// WriteLimit throttles post and comment submissions per IP. Optional.
	WriteLimit func(http.Handler) http.Handler
}

func passThrough(next http.Handler) http.Handler { return next }

// Register mounts the blog routes on r.
func (hs Handlers) Register(r chi.Router) {
	loginLimit := hs.LoginLimit
	if loginLimit == nil {
		loginLimit = passThrough
	}
	writeLimit := hs.WriteLimit
	if writeLimit == nil {
		writeLimit = passThrough
	}

	r.Get(RouteRoot, hs.Blog.Index)
	r.Get(RouteCategorySlug, hs.Blog.Category)

	r.With(middleware.RequireAuth).Get(RouteProfileEdit, hs.Profile.EditForm)
	r.With(middleware.RequireAuth).Post(RouteProfileEdit, hs.Profile.Edit)
	r.Get(RouteProfile, hs.Blog.Profile)

	r.Route(RoutePosts, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get(RoutePostCreate, hs.Blog.CreateForm)
			r.With(writeLimit).Post(RoutePostCreate, hs.Blog.Create)
			r.With(writeLimit).Post(RouteCommentCreate, hs.Comments.Create)
		})

		r.Get(RoutePostID, hs.Blog.Detail)

		// Non-authors, anonymous users included, are sent back to the post.
		r.Get(RoutePostEdit, hs.Blog.EditForm)
		r.With(writeLimit).Post(RoutePostEdit, hs.Blog.Edit)
		r.Get(RoutePostDelete, hs.Blog.DeleteForm)
		r.Post(RoutePostDelete, hs.Blog.Delete)

		r.Get(RouteCommentEdit, hs.Comments.EditForm)
		r.With(writeLimit).Post(RouteCommentEdit, hs.Comments.Edit)
		r.Get(RouteCommentDelete, hs.Comments.DeleteForm)
		r.Post(RouteCommentDelete, hs.Comments.Delete)
	})

	r.Get(RoutePageAbout, hs.Pages.About)
	r.Get(RoutePageRules, hs.Pages.Rules)

	r.Route(RouteAuth, func(r chi.Router) {
		r.Get(RouteLogin, hs.Auth.LoginForm)
		r.With(loginLimit).Post(RouteLogin, hs.Auth.Login)
		r.Post(RouteLogout, hs.Auth.Logout)
		r.Get(RouteRegistration, hs.Auth.RegistrationForm)
		r.With(loginLimit).Post(RouteRegistration, hs.Auth.Register)
	})

	r.Get(RouteHealth, hs.Health.Health)
	r.Get(RouteHealthLive, hs.Health.Liveness)
	r.Get(RouteHealthReady, hs.Health.Readiness)

	if hs.SEO != nil {
		r.Get(RouteRobots, hs.SEO.Robots)
		r.Get(RouteSitemap, hs.SEO.Sitemap)
	}
}
