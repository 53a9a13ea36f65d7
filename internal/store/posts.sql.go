// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const postColumns = `id, title, text, pub_date, author_id, location_id, category_id, image, is_published, created_at`

func scanPost(row interface{ Scan(...any) error }) (Post, error) {
	var i Post
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Text,
		&i.PubDate,
		&i.AuthorID,
		&i.LocationID,
		&i.CategoryID,
		&i.Image,
		&i.IsPublished,
		&i.CreatedAt,
	)
	return i, err
}

// PostFeedRow is a post joined with its author, category and location,
// annotated with the number of comments.
type PostFeedRow struct {
	ID                  int64          `json:"id"`
	Title               string         `json:"title"`
	Text                string         `json:"text"`
	PubDate             time.Time      `json:"pub_date"`
	AuthorID            int64          `json:"author_id"`
	AuthorUsername      string         `json:"author_username"`
	LocationID          sql.NullInt64  `json:"location_id"`
	LocationName        sql.NullString `json:"location_name"`
	LocationIsPublished sql.NullBool   `json:"location_is_published"`
	CategoryID          sql.NullInt64  `json:"category_id"`
	CategoryTitle       sql.NullString `json:"category_title"`
	CategorySlug        sql.NullString `json:"category_slug"`
	CategoryIsPublished sql.NullBool   `json:"category_is_published"`
	Image               string         `json:"image"`
	IsPublished         bool           `json:"is_published"`
	CreatedAt           time.Time      `json:"created_at"`
	CommentCount        int64          `json:"comment_count"`
}

const postFeedSelect = `
SELECT p.id, p.title, p.text, p.pub_date, p.author_id, u.username,
       p.location_id, l.name, l.is_published,
       p.category_id, c.title, c.slug, c.is_published,
       p.image, p.is_published, p.created_at,
       (SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id) AS comment_count
FROM posts p
JOIN users u ON u.id = p.author_id
LEFT JOIN locations l ON l.id = p.location_id
LEFT JOIN categories c ON c.id = p.category_id
`

// publicFilter selects posts visible to everyone at the bound instant.
const publicFilter = `p.is_published = 1 AND p.pub_date <= ? AND (p.category_id IS NULL OR c.is_published = 1)`

const postFeedOrder = ` ORDER BY p.pub_date DESC, p.id DESC`

func scanPostFeedRow(row interface{ Scan(...any) error }) (PostFeedRow, error) {
	var i PostFeedRow
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Text,
		&i.PubDate,
		&i.AuthorID,
		&i.AuthorUsername,
		&i.LocationID,
		&i.LocationName,
		&i.LocationIsPublished,
		&i.CategoryID,
		&i.CategoryTitle,
		&i.CategorySlug,
		&i.CategoryIsPublished,
		&i.Image,
		&i.IsPublished,
		&i.CreatedAt,
		&i.CommentCount,
	)
	return i, err
}

func (q *Queries) queryPostFeed(ctx context.Context, query string, args ...any) ([]PostFeedRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []PostFeedRow
	for rows.Next() {
		i, err := scanPostFeedRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) countRows(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

const createPost = `
INSERT INTO posts (title, text, pub_date, author_id, location_id, category_id, image, is_published, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + postColumns

type CreatePostParams struct {
	Title       string        `json:"title"`
	Text        string        `json:"text"`
	PubDate     time.Time     `json:"pub_date"`
	AuthorID    int64         `json:"author_id"`
	LocationID  sql.NullInt64 `json:"location_id"`
	CategoryID  sql.NullInt64 `json:"category_id"`
	Image       string        `json:"image"`
	IsPublished bool          `json:"is_published"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	row := q.db.QueryRowContext(ctx, createPost,
		arg.Title,
		arg.Text,
		arg.PubDate.UTC(),
		arg.AuthorID,
		arg.LocationID,
		arg.CategoryID,
		arg.Image,
		arg.IsPublished,
		arg.CreatedAt.UTC(),
	)
	return scanPost(row)
}

const getPostByID = `SELECT ` + postColumns + ` FROM posts WHERE id = ?`

func (q *Queries) GetPostByID(ctx context.Context, id int64) (Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPostByID, id))
}

const getPostDetail = postFeedSelect + `WHERE p.id = ?`

// GetPostDetail loads a single post in feed shape regardless of visibility.
func (q *Queries) GetPostDetail(ctx context.Context, id int64) (PostFeedRow, error) {
	return scanPostFeedRow(q.db.QueryRowContext(ctx, getPostDetail, id))
}

const updatePost = `
UPDATE posts
SET title = ?, text = ?, pub_date = ?, location_id = ?, category_id = ?, image = ?, is_published = ?
WHERE id = ?
RETURNING ` + postColumns

type UpdatePostParams struct {
	Title       string        `json:"title"`
	Text        string        `json:"text"`
	PubDate     time.Time     `json:"pub_date"`
	LocationID  sql.NullInt64 `json:"location_id"`
	CategoryID  sql.NullInt64 `json:"category_id"`
	Image       string        `json:"image"`
	IsPublished bool          `json:"is_published"`
	ID          int64         `json:"id"`
}

func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (Post, error) {
	row := q.db.QueryRowContext(ctx, updatePost,
		arg.Title,
		arg.Text,
		arg.PubDate.UTC(),
		arg.LocationID,
		arg.CategoryID,
		arg.Image,
		arg.IsPublished,
		arg.ID,
	)
	return scanPost(row)
}

const deletePost = `DELETE FROM posts WHERE id = ?`

func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deletePost, id)
	return err
}

const listPublishedPosts = postFeedSelect + `WHERE ` + publicFilter + postFeedOrder + ` LIMIT ? OFFSET ?`

type ListPublishedPostsParams struct {
	Now    time.Time `json:"now"`
	Limit  int64     `json:"limit"`
	Offset int64     `json:"offset"`
}

func (q *Queries) ListPublishedPosts(ctx context.Context, arg ListPublishedPostsParams) ([]PostFeedRow, error) {
	return q.queryPostFeed(ctx, listPublishedPosts, arg.Now.UTC(), arg.Limit, arg.Offset)
}

const countPublishedPosts = `
SELECT COUNT(*) FROM posts p
LEFT JOIN categories c ON c.id = p.category_id
WHERE ` + publicFilter

func (q *Queries) CountPublishedPosts(ctx context.Context, now time.Time) (int64, error) {
	return q.countRows(ctx, countPublishedPosts, now.UTC())
}

const listPublishedPostsByCategory = postFeedSelect +
	`WHERE ` + publicFilter + ` AND p.category_id = ?` + postFeedOrder + ` LIMIT ? OFFSET ?`

type ListPublishedPostsByCategoryParams struct {
	CategoryID int64     `json:"category_id"`
	Now        time.Time `json:"now"`
	Limit      int64     `json:"limit"`
	Offset     int64     `json:"offset"`
}

func (q *Queries) ListPublishedPostsByCategory(ctx context.Context, arg ListPublishedPostsByCategoryParams) ([]PostFeedRow, error) {
	return q.queryPostFeed(ctx, listPublishedPostsByCategory, arg.Now.UTC(), arg.CategoryID, arg.Limit, arg.Offset)
}

const countPublishedPostsByCategory = countPublishedPosts + ` AND p.category_id = ?`

type CountPublishedPostsByCategoryParams struct {
	CategoryID int64     `json:"category_id"`
	Now        time.Time `json:"now"`
}

func (q *Queries) CountPublishedPostsByCategory(ctx context.Context, arg CountPublishedPostsByCategoryParams) (int64, error) {
	return q.countRows(ctx, countPublishedPostsByCategory, arg.Now.UTC(), arg.CategoryID)
}

const listPublishedPostsByAuthor = postFeedSelect +
	`WHERE ` + publicFilter + ` AND p.author_id = ?` + postFeedOrder + ` LIMIT ? OFFSET ?`

type ListPublishedPostsByAuthorParams struct {
	AuthorID int64     `json:"author_id"`
	Now      time.Time `json:"now"`
	Limit    int64     `json:"limit"`
	Offset   int64     `json:"offset"`
}

func (q *Queries) ListPublishedPostsByAuthor(ctx context.Context, arg ListPublishedPostsByAuthorParams) ([]PostFeedRow, error) {
	return q.queryPostFeed(ctx, listPublishedPostsByAuthor, arg.Now.UTC(), arg.AuthorID, arg.Limit, arg.Offset)
}

const countPublishedPostsByAuthor = countPublishedPosts + ` AND p.author_id = ?`

type CountPublishedPostsByAuthorParams struct {
	AuthorID int64     `json:"author_id"`
	Now      time.Time `json:"now"`
}

func (q *Queries) CountPublishedPostsByAuthor(ctx context.Context, arg CountPublishedPostsByAuthorParams) (int64, error) {
	return q.countRows(ctx, countPublishedPostsByAuthor, arg.Now.UTC(), arg.AuthorID)
}

const listPostsByAuthor = postFeedSelect + `WHERE p.author_id = ?` + postFeedOrder + ` LIMIT ? OFFSET ?`

type ListPostsByAuthorParams struct {
	AuthorID int64 `json:"author_id"`
	Limit    int64 `json:"limit"`
	Offset   int64 `json:"offset"`
}

// ListPostsByAuthor returns every post of an author in any state.
func (q *Queries) ListPostsByAuthor(ctx context.Context, arg ListPostsByAuthorParams) ([]PostFeedRow, error) {
	return q.queryPostFeed(ctx, listPostsByAuthor, arg.AuthorID, arg.Limit, arg.Offset)
}

const countPostsByAuthor = `SELECT COUNT(*) FROM posts WHERE author_id = ?`

func (q *Queries) CountPostsByAuthor(ctx context.Context, authorID int64) (int64, error) {
	return q.countRows(ctx, countPostsByAuthor, authorID)
}

const listPostImages = `SELECT image FROM posts WHERE image != ''`

// ListPostImages returns every image path still referenced by a post.
func (q *Queries) ListPostImages(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listPostImages)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []string
	for rows.Next() {
		var image string
		if err := rows.Scan(&image); err != nil {
			return nil, err
		}
		items = append(items, image)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
