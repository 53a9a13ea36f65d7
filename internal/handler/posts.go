// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/model"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/internal/util"
)

// multipartMemory is the part of an upload kept in memory while parsing.
const multipartMemory = 8 << 20

// pubDateLayouts are accepted for the publication date, in local time.
var pubDateLayouts = []string{
	render.DateTimeInputLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// postFormView is the post form page data.
type postFormView struct {
	IsEdit       bool
	Categories   []store.Category
	Locations    []store.Location
	CurrentImage string
}

// postDeleteView is the post delete confirmation page data.
type postDeleteView struct {
	Post store.Post
}

// renderPostForm renders the create or edit form with the category and
// location choices.
func (h *BlogHandler) renderPostForm(w http.ResponseWriter, r *http.Request, form *render.Form, isEdit bool, currentImage string) {
	choices, err := h.blog.Taxonomy().Choices(r.Context())
	if err != nil {
		h.renderer.ServerError(w, r, fmt.Errorf("loading post form choices: %w", err))
		return
	}

	title := "New post"
	if isEdit {
		title = "Edit post"
	}

	renderForm(w, r, h.renderer, "blog/post_form", title, form, postFormView{
		IsEdit:       isEdit,
		Categories:   choices.Categories,
		Locations:    choices.Locations,
		CurrentImage: currentImage,
	})
}

// postFormValues fills the edit form from a stored post.
func postFormValues(post *store.Post) url.Values {
	values := url.Values{
		"title":    {post.Title},
		"text":     {post.Text},
		"pub_date": {post.PubDate.In(time.Local).Format(render.DateTimeInputLayout)},
	}
	if post.CategoryID.Valid {
		values.Set("category", util.FormatNullInt64(post.CategoryID))
	}
	if post.LocationID.Valid {
		values.Set("location", util.FormatNullInt64(post.LocationID))
	}
	if post.IsPublished {
		values.Set("is_published", "on")
	}
	return values
}

// parsePubDate reads a datetime-local value in the server's time zone.
func parsePubDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range pubDateLayouts {
		t, err := time.ParseInLocation(layout, raw, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parsePostForm reads the multipart post form. It returns the service
// input, the form for re-rendering, a cleanup func releasing the upload,
// and false when the submission is malformed before validation.
func (h *BlogHandler) parsePostForm(w http.ResponseWriter, r *http.Request) (blog.PostInput, *render.Form, func(), bool) {
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		form := render.NewForm(r.PostForm)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			form.WithErrors(map[string]string{"image": "The image file is too large."})
		} else {
			slog.Warn("failed to parse post form", "error", err)
			form.WithErrors(map[string]string{render.NonFieldErrors: "The form could not be read, try again."})
		}
		return blog.PostInput{}, form, noop, false
	}

	form := render.NewForm(r.PostForm)
	errs := make(map[string]string)

	in := blog.PostInput{
		Title:       form.Get("title"),
		Text:        form.Get("text"),
		IsPublished: form.Checked("is_published"),
		ClearImage:  form.Checked("image-clear"),
	}

	if raw := form.Get("pub_date"); raw != "" {
		pubDate, err := parsePubDate(raw)
		if err != nil {
			errs["pub_date"] = "Enter a valid date/time."
		} else {
			in.PubDate = pubDate
		}
	}

	var ok bool
	if in.CategoryID, ok = util.ParseOptionalID(form.Get("category")); !ok {
		errs["category"] = "Select a valid choice."
	}
	if in.LocationID, ok = util.ParseOptionalID(form.Get("location")); !ok {
		errs["location"] = "Select a valid choice."
	}

	cleanup := noop
	if r.MultipartForm != nil {
		multipartForm := r.MultipartForm
		cleanup = func() { _ = multipartForm.RemoveAll() }

		file, header, err := r.FormFile("image")
		switch {
		case err == nil && header.Size > 0:
			in.Image = file
			cleanup = func() {
				_ = file.Close()
				_ = multipartForm.RemoveAll()
			}
		case err == nil:
			_ = file.Close()
		case !errors.Is(err, http.ErrMissingFile):
			errs["image"] = "The uploaded file could not be read."
		}
	}

	if len(errs) > 0 {
		cleanup()
		form.WithErrors(errs)
		return in, form, noop, false
	}
	return in, form, cleanup, true
}

// CreateForm handles GET /posts/create/.
func (h *BlogHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	form := render.NewForm(url.Values{
		"pub_date":     {time.Now().Format(render.DateTimeInputLayout)},
		"is_published": {"on"},
	})
	h.renderPostForm(w, r, form, false, "")
}

// Create handles POST /posts/create/.
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	in, form, cleanup, ok := h.parsePostForm(w, r)
	defer cleanup()
	if !ok {
		h.renderPostForm(w, r, form, false, "")
		return
	}

	post, err := h.blog.CreatePost(r.Context(), user.ID, in)
	if err != nil {
		if fields := blog.FieldErrors(err); fields != nil {
			h.renderPostForm(w, r, form.WithErrors(fields), false, "")
			return
		}
		h.renderer.ServerError(w, r, fmt.Errorf("creating post: %w", err))
		return
	}

	slog.Info("post created", "post_id", post.ID, "author_id", user.ID)
	h.logPostEvent(r, "Post created", post)

	flashSuccess(w, r, h.renderer, render.ProfileURL(user.Username), "Post saved.")
}

// EditForm handles GET /posts/{postID}/edit/.
func (h *BlogHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(w, r, h.renderer, RouteParamPostID)
	if !ok {
		return
	}

	post, ok := h.requirePostAuthor(w, r, postID)
	if !ok {
		return
	}

	h.renderPostForm(w, r, render.NewForm(postFormValues(post)), true, post.Image)
}

// Edit handles POST /posts/{postID}/edit/.
func (h *BlogHandler) Edit(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(w, r, h.renderer, RouteParamPostID)
	if !ok {
		return
	}

	current, ok := h.requirePostAuthor(w, r, postID)
	if !ok {
		return
	}
	user := middleware.GetUser(r)

	in, form, cleanup, ok := h.parsePostForm(w, r)
	defer cleanup()
	if !ok {
		h.renderPostForm(w, r, form, true, current.Image)
		return
	}

	post, err := h.blog.UpdatePost(r.Context(), postID, user.ID, in)
	if err != nil {
		if fields := blog.FieldErrors(err); fields != nil {
			h.renderPostForm(w, r, form.WithErrors(fields), true, current.Image)
			return
		}
		handleServiceError(w, r, h.renderer, "updating post", postID, err)
		return
	}

	slog.Info("post updated", "post_id", post.ID, "author_id", user.ID)
	h.logPostEvent(r, "Post updated", post)

	flashSuccess(w, r, h.renderer, render.ProfileURL(user.Username), "Post saved.")
}

// DeleteForm handles GET /posts/{postID}/delete/.
func (h *BlogHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(w, r, h.renderer, RouteParamPostID)
	if !ok {
		return
	}

	post, ok := h.requirePostAuthor(w, r, postID)
	if !ok {
		return
	}

	renderPage(w, r, h.renderer, "blog/post_delete", "Delete post", postDeleteView{Post: *post})
}

// Delete handles POST /posts/{postID}/delete/.
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(w, r, h.renderer, RouteParamPostID)
	if !ok {
		return
	}

	post, ok := requireAuthor(w, r, h.renderer, "deleting post", postID, func() (*store.Post, error) {
		return h.blog.DeletePost(r.Context(), postID, middleware.GetUserID(r))
	})
	if !ok {
		return
	}
	user := middleware.GetUser(r)

	slog.Info("post deleted", "post_id", post.ID, "author_id", user.ID)
	h.logPostEvent(r, "Post deleted", post)

	flashSuccess(w, r, h.renderer, render.ProfileURL(user.Username), "Post deleted.")
}

// requirePostAuthor loads a post only its author may change.
func (h *BlogHandler) requirePostAuthor(w http.ResponseWriter, r *http.Request, postID int64) (*store.Post, bool) {
	return requireAuthor(w, r, h.renderer, "post", postID, func() (*store.Post, error) {
		return h.blog.AuthorPost(r.Context(), postID, middleware.GetUserID(r))
	})
}

func (h *BlogHandler) logPostEvent(r *http.Request, message string, post *store.Post) {
	_ = h.eventService.Record(r.Context(), requestEvent(r, model.EventLevelInfo, model.EventCategoryPost, message, map[string]any{
		"post_id": post.ID,
		"title":   post.Title,
	}))
}
