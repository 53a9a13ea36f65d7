// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/blogicum/internal/model"
	"github.com/olegiv/blogicum/internal/store"
)

// ValidateComment checks the comment text.
func ValidateComment(text string) error {
	verr := &ValidationError{}
	switch {
	case strings.TrimSpace(text) == "":
		verr.Add("text", "This field is required.")
	case utf8.RuneCountInString(text) > model.MaxCommentLength:
		verr.Add("text", fmt.Sprintf("Ensure this value has at most %d characters.", model.MaxCommentLength))
	}
	return verr.Err()
}

// AddComment stores a comment by authorID on an existing post.
func (s *Service) AddComment(ctx context.Context, postID, authorID int64, text string) (*store.Comment, error) {
	if _, err := s.queries.GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading post %d: %w", postID, err)
	}

	if err := ValidateComment(text); err != nil {
		return nil, err
	}

	comment, err := s.queries.CreateComment(ctx, store.CreateCommentParams{
		Text:      text,
		AuthorID:  authorID,
		PostID:    postID,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	return &comment, nil
}

// AuthorComment loads a comment of postID for modification by userID. A
// comment that does not belong to the post is ErrNotFound; one written by
// someone else is ErrForbidden.
func (s *Service) AuthorComment(ctx context.Context, postID, commentID, userID int64) (*store.Comment, error) {
	comment, err := s.queries.GetCommentForPost(ctx, store.GetCommentForPostParams{
		ID:     commentID,
		PostID: postID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading comment %d: %w", commentID, err)
	}
	if userID == 0 || comment.AuthorID != userID {
		return nil, ErrForbidden
	}
	return &comment, nil
}

// UpdateComment replaces the text of a comment owned by userID.
func (s *Service) UpdateComment(ctx context.Context, postID, commentID, userID int64, text string) (*store.Comment, error) {
	if _, err := s.AuthorComment(ctx, postID, commentID, userID); err != nil {
		return nil, err
	}
	if err := ValidateComment(text); err != nil {
		return nil, err
	}

	comment, err := s.queries.UpdateCommentText(ctx, store.UpdateCommentTextParams{
		Text: text,
		ID:   commentID,
	})
	if err != nil {
		return nil, fmt.Errorf("updating comment %d: %w", commentID, err)
	}
	return &comment, nil
}

// DeleteComment removes a comment owned by userID.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID, userID int64) error {
	if _, err := s.AuthorComment(ctx, postID, commentID, userID); err != nil {
		return err
	}
	if err := s.queries.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("deleting comment %d: %w", commentID, err)
	}
	return nil
}
