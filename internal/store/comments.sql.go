// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const commentColumns = `id, text, author_id, post_id, created_at`

func scanComment(row interface{ Scan(...any) error }) (Comment, error) {
	var i Comment
	err := row.Scan(&i.ID, &i.Text, &i.AuthorID, &i.PostID, &i.CreatedAt)
	return i, err
}

const createComment = `
INSERT INTO comments (text, author_id, post_id, created_at)
VALUES (?, ?, ?, ?)
RETURNING ` + commentColumns

type CreateCommentParams struct {
	Text      string    `json:"text"`
	AuthorID  int64     `json:"author_id"`
	PostID    int64     `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	row := q.db.QueryRowContext(ctx, createComment, arg.Text, arg.AuthorID, arg.PostID, arg.CreatedAt.UTC())
	return scanComment(row)
}

const getCommentForPost = `SELECT ` + commentColumns + ` FROM comments WHERE id = ? AND post_id = ?`

type GetCommentForPostParams struct {
	ID     int64 `json:"id"`
	PostID int64 `json:"post_id"`
}

// GetCommentForPost loads a comment only when it belongs to the given post.
func (q *Queries) GetCommentForPost(ctx context.Context, arg GetCommentForPostParams) (Comment, error) {
	return scanComment(q.db.QueryRowContext(ctx, getCommentForPost, arg.ID, arg.PostID))
}

const updateCommentText = `UPDATE comments SET text = ? WHERE id = ? RETURNING ` + commentColumns

type UpdateCommentTextParams struct {
	Text string `json:"text"`
	ID   int64  `json:"id"`
}

func (q *Queries) UpdateCommentText(ctx context.Context, arg UpdateCommentTextParams) (Comment, error) {
	return scanComment(q.db.QueryRowContext(ctx, updateCommentText, arg.Text, arg.ID))
}

const deleteComment = `DELETE FROM comments WHERE id = ?`

func (q *Queries) DeleteComment(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteComment, id)
	return err
}

// CommentWithAuthorRow is a comment joined with its author's username.
type CommentWithAuthorRow struct {
	ID             int64     `json:"id"`
	Text           string    `json:"text"`
	AuthorID       int64     `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	PostID         int64     `json:"post_id"`
	CreatedAt      time.Time `json:"created_at"`
}

const listCommentsByPost = `
SELECT cm.id, cm.text, cm.author_id, u.username, cm.post_id, cm.created_at
FROM comments cm
JOIN users u ON u.id = cm.author_id
WHERE cm.post_id = ?
ORDER BY cm.created_at ASC, cm.id ASC`

// ListCommentsByPost returns the comments of a post, oldest first.
func (q *Queries) ListCommentsByPost(ctx context.Context, postID int64) ([]CommentWithAuthorRow, error) {
	rows, err := q.db.QueryContext(ctx, listCommentsByPost, postID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []CommentWithAuthorRow
	for rows.Next() {
		var i CommentWithAuthorRow
		if err := rows.Scan(
			&i.ID,
			&i.Text,
			&i.AuthorID,
			&i.AuthorUsername,
			&i.PostID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countCommentsByPost = `SELECT COUNT(*) FROM comments WHERE post_id = ?`

func (q *Queries) CountCommentsByPost(ctx context.Context, postID int64) (int64, error) {
	return q.countRows(ctx, countCommentsByPost, postID)
}
