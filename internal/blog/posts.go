// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olegiv/blogicum/internal/imaging"
	"github.com/olegiv/blogicum/internal/model"
	"github.com/olegiv/blogicum/internal/store"
)

// PostInput is the submitted post form.
type PostInput struct {
	Title       string
	Text        string
	PubDate     time.Time
	CategoryID  sql.NullInt64
	LocationID  sql.NullInt64
	IsPublished bool

	// Image is a new upload, nil keeps the current one.
	Image io.Reader
	// ClearImage removes the current image when no new one is uploaded.
	ClearImage bool
}

// validatePost checks the text fields and the category and location choices.
func (s *Service) validatePost(ctx context.Context, in *PostInput) *ValidationError {
	verr := &ValidationError{}

	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.Title == "":
		verr.Add("title", "This field is required.")
	case utf8.RuneCountInString(in.Title) > model.MaxTitleLength:
		verr.Add("title", fmt.Sprintf("Ensure this value has at most %d characters.", model.MaxTitleLength))
	}

	switch {
	case strings.TrimSpace(in.Text) == "":
		verr.Add("text", "This field is required.")
	case utf8.RuneCountInString(in.Text) > model.MaxPostTextLength:
		verr.Add("text", fmt.Sprintf("Ensure this value has at most %d characters.", model.MaxPostTextLength))
	}

	if in.PubDate.IsZero() {
		verr.Add("pub_date", "This field is required.")
	}

	if in.CategoryID.Valid || in.LocationID.Valid {
		choices, err := s.taxonomy.Choices(ctx)
		if err != nil {
			slog.Error("failed to load post form choices", "error", err)
			verr.Add("category", "Categories are temporarily unavailable.")
			return verr
		}
		if in.CategoryID.Valid && !hasCategory(choices.Categories, in.CategoryID.Int64) {
			verr.Add("category", "Select a valid choice.")
		}
		if in.LocationID.Valid && !hasLocation(choices.Locations, in.LocationID.Int64) {
			verr.Add("location", "Select a valid choice.")
		}
	}

	return verr
}

func hasCategory(categories []store.Category, id int64) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func hasLocation(locations []store.Location, id int64) bool {
	for _, l := range locations {
		if l.ID == id {
			return true
		}
	}
	return false
}

// processImage decodes and resizes the upload, recording failures on verr.
func (s *Service) processImage(r io.Reader, verr *ValidationError) *imaging.Result {
	if r == nil {
		return nil
	}
	res, err := s.images.Process(r)
	if err != nil {
		if errors.Is(err, imaging.ErrTooLarge) {
			verr.Add("image", "The image file is too large.")
		} else {
			verr.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		}
		return nil
	}
	return res
}

// storeImage saves a processed image and returns its key.
func (s *Service) storeImage(ctx context.Context, res *imaging.Result) (string, error) {
	if s.storage == nil {
		return "", errors.New("image storage is not configured")
	}
	key := imaging.NewKey(res.Ext)
	if err := s.storage.Save(ctx, key, res.Data, res.ContentType); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return key, nil
}

// removeImage deletes a stored image, logging failures. Files left behind
// are collected by the orphan image sweep.
func (s *Service) removeImage(ctx context.Context, key string) {
	if key == "" || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete image", "category", "media", "key", key, "error", err)
	}
}

// CreatePost validates the form and stores a post owned by authorID.
func (s *Service) CreatePost(ctx context.Context, authorID int64, in PostInput) (*store.Post, error) {
	verr := s.validatePost(ctx, &in)
	img := s.processImage(in.Image, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	var key string
	if img != nil {
		var err error
		if key, err = s.storeImage(ctx, img); err != nil {
			return nil, err
		}
	}

	post, err := s.queries.CreatePost(ctx, store.CreatePostParams{
		Title:       in.Title,
		Text:        in.Text,
		PubDate:     in.PubDate,
		AuthorID:    authorID,
		LocationID:  in.LocationID,
		CategoryID:  in.CategoryID,
		Image:       key,
		IsPublished: in.IsPublished,
		CreatedAt:   s.now(),
	})
	if err != nil {
		s.removeImage(ctx, key)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	return &post, nil
}

// AuthorPost loads a post for modification by userID. It returns
// ErrNotFound for a missing post and ErrForbidden when userID is not the
// author.
func (s *Service) AuthorPost(ctx context.Context, postID, userID int64) (*store.Post, error) {
	post, err := s.queries.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading post %d: %w", postID, err)
	}
	if userID == 0 || post.AuthorID != userID {
		return nil, ErrForbidden
	}
	return &post, nil
}

// UpdatePost applies the form to a post owned by userID. Replacing or
// clearing the image deletes the previous file.
func (s *Service) UpdatePost(ctx context.Context, postID, userID int64, in PostInput) (*store.Post, error) {
	current, err := s.AuthorPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	verr := s.validatePost(ctx, &in)
	img := s.processImage(in.Image, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	image := current.Image
	var uploaded string
	switch {
	case img != nil:
		if uploaded, err = s.storeImage(ctx, img); err != nil {
			return nil, err
		}
		image = uploaded
	case in.ClearImage:
		image = ""
	}

	post, err := s.queries.UpdatePost(ctx, store.UpdatePostParams{
		Title:       in.Title,
		Text:        in.Text,
		PubDate:     in.PubDate,
		LocationID:  in.LocationID,
		CategoryID:  in.CategoryID,
		Image:       image,
		IsPublished: in.IsPublished,
		ID:          postID,
	})
	if err != nil {
		s.removeImage(ctx, uploaded)
		return nil, fmt.Errorf("updating post %d: %w", postID, err)
	}

	if current.Image != "" && current.Image != post.Image {
		s.removeImage(ctx, current.Image)
	}

	return &post, nil
}

// DeletePost removes a post owned by userID together with its comments
// and image.
func (s *Service) DeletePost(ctx context.Context, postID, userID int64) (*store.Post, error) {
	post, err := s.AuthorPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	// Comments go with the row through ON DELETE CASCADE.
	if err := s.queries.DeletePost(ctx, postID); err != nil {
		return nil, fmt.Errorf("deleting post %d: %w", postID, err)
	}

	s.removeImage(ctx, post.Image)
	return post, nil
}
