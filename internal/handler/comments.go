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
	"github.com/olegiv/blogicum/internal/store"
)

// CommentHandler handles adding, editing and deleting comments.
type CommentHandler struct {
	blog         *blog.Service
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(db *sql.DB, renderer *render.Renderer, svc *blog.Service) *CommentHandler {
	return &CommentHandler{
		blog:         svc,
		renderer:     renderer,
		eventService: service.NewEventService(db),
	}
}

// commentFormView is the comment edit page data.
type commentFormView struct {
	PostID int64
}

// commentDeleteView is the comment delete confirmation page data.
type commentDeleteView struct {
	Comment store.Comment
	PostID  int64
}

// parseCommentParams reads the post and comment IDs from the URL.
func (h *CommentHandler) parseCommentParams(w http.ResponseWriter, r *http.Request) (postID, commentID int64, ok bool) {
	if postID, ok = parseIDParam(w, r, h.renderer, RouteParamPostID); !ok {
		return 0, 0, false
	}
	if commentID, ok = parseIDParam(w, r, h.renderer, RouteParamCommentID); !ok {
		return 0, 0, false
	}
	return postID, commentID, true
}

// Create handles POST /posts/{postID}/comment/. An invalid comment
// re-renders the post detail page with the error.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(w, r, h.renderer, RouteParamPostID)
	if !ok {
		return
	}
	user := middleware.GetUser(r)

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, render.PostURL(postID), http.StatusSeeOther)
		return
	}
	text := r.PostForm.Get("text")

	comment, err := h.blog.AddComment(r.Context(), postID, user.ID, text)
	if err != nil {
		if fields := blog.FieldErrors(err); fields != nil {
			detail, ok := loadVisiblePost(w, r, h.renderer, h.blog, postID)
			if !ok {
				return
			}
			form := render.NewForm(url.Values{"text": {text}}).WithErrors(fields)
			renderForm(w, r, h.renderer, "blog/detail", detail.Post.Title, form, detail)
			return
		}
		handleServiceError(w, r, h.renderer, "adding comment", postID, err)
		return
	}

	slog.Info("comment added", "comment_id", comment.ID, "post_id", postID, "author_id", user.ID)
	h.logCommentEvent(r, "Comment added", comment)

	http.Redirect(w, r, render.PostURL(postID), http.StatusSeeOther)
}

// EditForm handles GET /posts/{postID}/comment/{commentID}/edit/.
func (h *CommentHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := h.parseCommentParams(w, r)
	if !ok {
		return
	}

	comment, ok := h.requireCommentAuthor(w, r, postID, commentID)
	if !ok {
		return
	}

	form := render.NewForm(url.Values{"text": {comment.Text}})
	renderForm(w, r, h.renderer, "blog/comment_form", "Edit comment", form, commentFormView{PostID: postID})
}

// Edit handles POST /posts/{postID}/comment/{commentID}/edit/.
func (h *CommentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := h.parseCommentParams(w, r)
	if !ok {
		return
	}

	if _, ok := h.requireCommentAuthor(w, r, postID, commentID); !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.ServerError(w, r, fmt.Errorf("parsing comment form: %w", err))
		return
	}
	form := render.NewForm(r.PostForm)

	comment, err := h.blog.UpdateComment(r.Context(), postID, commentID, middleware.GetUserID(r), form.Get("text"))
	if err != nil {
		if fields := blog.FieldErrors(err); fields != nil {
			renderForm(w, r, h.renderer, "blog/comment_form", "Edit comment", form.WithErrors(fields), commentFormView{PostID: postID})
			return
		}
		handleServiceError(w, r, h.renderer, "updating comment", postID, err)
		return
	}

	h.logCommentEvent(r, "Comment updated", comment)

	http.Redirect(w, r, render.PostURL(postID), http.StatusSeeOther)
}

// DeleteForm handles GET /posts/{postID}/comment/{commentID}/delete/.
func (h *CommentHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := h.parseCommentParams(w, r)
	if !ok {
		return
	}

	comment, ok := h.requireCommentAuthor(w, r, postID, commentID)
	if !ok {
		return
	}

	renderPage(w, r, h.renderer, "blog/comment_delete", "Delete comment", commentDeleteView{
		Comment: *comment,
		PostID:  postID,
	})
}

// Delete handles POST /posts/{postID}/comment/{commentID}/delete/.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := h.parseCommentParams(w, r)
	if !ok {
		return
	}

	comment, ok := h.requireCommentAuthor(w, r, postID, commentID)
	if !ok {
		return
	}

	if err := h.blog.DeleteComment(r.Context(), postID, commentID, middleware.GetUserID(r)); err != nil {
		handleServiceError(w, r, h.renderer, "deleting comment", postID, err)
		return
	}

	slog.Info("comment deleted", "comment_id", commentID, "post_id", postID)
	h.logCommentEvent(r, "Comment deleted", comment)

	flashInfo(w, r, h.renderer, render.PostURL(postID), "Comment deleted.")
}

// requireCommentAuthor loads a comment only its author may change.
func (h *CommentHandler) requireCommentAuthor(w http.ResponseWriter, r *http.Request, postID, commentID int64) (*store.Comment, bool) {
	return requireAuthor(w, r, h.renderer, "comment", postID, func() (*store.Comment, error) {
		return h.blog.AuthorComment(r.Context(), postID, commentID, middleware.GetUserID(r))
	})
}

func (h *CommentHandler) logCommentEvent(r *http.Request, message string, comment *store.Comment) {
	_ = h.eventService.Record(r.Context(), requestEvent(r, model.EventLevelInfo, model.EventCategoryComment, message, map[string]any{
		"comment_id": comment.ID,
		"post_id":    comment.PostID,
	}))
}
