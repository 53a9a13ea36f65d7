// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/service"
	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/internal/util"
)

// BlogHandler handles the public feeds, post detail and post management.
type BlogHandler struct {
	blog          *blog.Service
	renderer      *render.Renderer
	eventService  *service.EventService
	maxUploadSize int64
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(db *sql.DB, renderer *render.Renderer, svc *blog.Service, maxUploadSize int64) *BlogHandler {
	return &BlogHandler{
		blog:          svc,
		renderer:      renderer,
		eventService:  service.NewEventService(db),
		maxUploadSize: maxUploadSize,
	}
}

// feedView is the data shared by every paginated listing.
type feedView struct {
	Posts      []store.PostFeedRow
	Pagination Pagination
}

// categoryView is the category feed page data.
type categoryView struct {
	Category store.Category
	feedView
}

// profileView is the profile feed page data.
type profileView struct {
	Profile store.User
	IsOwner bool
	feedView
}

func newFeedView(r *http.Request, feed blog.Feed) feedView {
	return feedView{
		Posts:      feed.Posts,
		Pagination: BuildPagination(feed.Page, r.URL.Path, r.URL.Query()),
	}
}

// pageParam returns the raw ?page= value.
func pageParam(r *http.Request) string {
	return r.URL.Query().Get("page")
}

// Index handles GET / - the home feed.
func (h *BlogHandler) Index(w http.ResponseWriter, r *http.Request) {
	feed, ok := requireEntity(w, r, h.renderer, "home feed", func() (*blog.Feed, error) {
		return h.blog.HomeFeed(r.Context(), pageParam(r))
	})
	if !ok {
		return
	}

	renderPage(w, r, h.renderer, "blog/index", "", newFeedView(r, *feed))
}

// Category handles GET /category/{slug}/.
func (h *BlogHandler) Category(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		h.renderer.NotFound(w, r)
		return
	}

	feed, ok := requireEntity(w, r, h.renderer, "category feed", func() (*blog.CategoryFeed, error) {
		return h.blog.CategoryFeed(r.Context(), slug, pageParam(r))
	})
	if !ok {
		return
	}

	renderPage(w, r, h.renderer, "blog/category", feed.Category.Title, categoryView{
		Category: feed.Category,
		feedView: newFeedView(r, feed.Feed),
	})
}

// Profile handles GET /profile/{username}/.
func (h *BlogHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	feed, ok := requireEntity(w, r, h.renderer, "profile feed", func() (*blog.ProfileFeed, error) {
		return h.blog.ProfileFeed(r.Context(), username, middleware.GetUserID(r), pageParam(r))
	})
	if !ok {
		return
	}

	renderPage(w, r, h.renderer, "blog/profile", feed.Profile.Username, profileView{
		Profile:  feed.Profile,
		IsOwner:  feed.IsOwner,
		feedView: newFeedView(r, feed.Feed),
	})
}

// Detail handles GET /posts/{postID}/.
func (h *BlogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(w, r, h.renderer, RouteParamPostID)
	if !ok {
		return
	}

	detail, ok := loadVisiblePost(w, r, h.renderer, h.blog, postID)
	if !ok {
		return
	}

	renderPage(w, r, h.renderer, "blog/detail", detail.Post.Title, detail)
}

// loadVisiblePost loads a post with its comments as the current user may
// see it. Hidden and missing posts render the 404 page.
func loadVisiblePost(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, svc *blog.Service, postID int64) (*blog.PostDetail, bool) {
	return requireEntity(w, r, renderer, "post", func() (*blog.PostDetail, error) {
		return svc.PostDetail(r.Context(), postID, middleware.GetUserID(r))
	})
}
