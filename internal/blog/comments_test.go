// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blogicum/internal/model"
)

func TestValidateComment(t *testing.T) {
	assert.NoError(t, ValidateComment("fine"))
	assert.Contains(t, FieldErrors(ValidateComment("  \n ")), "text")
	assert.Contains(t, FieldErrors(ValidateComment(strings.Repeat("ж", model.MaxCommentLength+1))), "text")
	assert.NoError(t, ValidateComment(strings.Repeat("ж", model.MaxCommentLength)))
}

func TestAddComment(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	post := e.post(t, "post", postSpec{author: alice.ID, published: true})

	c, err := e.svc.AddComment(ctx, post.ID, bob.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, c.AuthorID)
	assert.Equal(t, post.ID, c.PostID)

	_, err = e.svc.AddComment(ctx, 9999, bob.ID, "hello")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.svc.AddComment(ctx, post.ID, bob.ID, "")
	assert.Contains(t, FieldErrors(err), "text")

	detail, err := e.svc.PostDetail(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 1)
	assert.Equal(t, int64(1), detail.Post.CommentCount)
}

func TestUpdateComment(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	post := e.post(t, "post", postSpec{author: alice.ID, published: true})
	other := e.post(t, "other", postSpec{author: alice.ID, published: true})
	c := e.comment(t, post.ID, bob.ID, "original")

	_, err := e.svc.UpdateComment(ctx, post.ID, c.ID, alice.ID, "changed by alice")
	assert.ErrorIs(t, err, ErrForbidden, "post author is not the comment author")

	_, err = e.svc.UpdateComment(ctx, other.ID, c.ID, bob.ID, "wrong post")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.svc.UpdateComment(ctx, post.ID, c.ID, bob.ID, "")
	assert.Contains(t, FieldErrors(err), "text")

	stored, err := e.svc.AuthorComment(ctx, post.ID, c.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Text)

	updated, err := e.svc.UpdateComment(ctx, post.ID, c.ID, bob.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
}

func TestDeleteComment(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	post := e.post(t, "post", postSpec{author: alice.ID, published: true})
	c := e.comment(t, post.ID, bob.ID, "bye")

	assert.ErrorIs(t, e.svc.DeleteComment(ctx, post.ID, c.ID, 0), ErrForbidden)
	assert.ErrorIs(t, e.svc.DeleteComment(ctx, post.ID, c.ID, alice.ID), ErrForbidden)

	count, err := e.q.CountCommentsByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, e.svc.DeleteComment(ctx, post.ID, c.ID, bob.ID))
	count, err = e.q.CountCommentsByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, e.svc.DeleteComment(ctx, post.ID, c.ID, bob.ID), ErrNotFound)
}
