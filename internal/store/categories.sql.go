// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const categoryColumns = `id, title, description, slug, is_published, created_at`

func scanCategory(row interface{ Scan(...any) error }) (Category, error) {
	var i Category
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.Slug,
		&i.IsPublished,
		&i.CreatedAt,
	)
	return i, err
}

const createCategory = `
INSERT INTO categories (title, description, slug, is_published, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + categoryColumns

type CreateCategoryParams struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory,
		arg.Title,
		arg.Description,
		arg.Slug,
		arg.IsPublished,
		arg.CreatedAt,
	)
	return scanCategory(row)
}

const getPublishedCategoryBySlug = `SELECT ` + categoryColumns + ` FROM categories WHERE slug = ? AND is_published = 1`

func (q *Queries) GetPublishedCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getPublishedCategoryBySlug, slug))
}

const listCategories = `SELECT ` + categoryColumns + ` FROM categories ORDER BY title, id`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	return q.queryCategories(ctx, listCategories)
}

const listPublishedCategories = `SELECT ` + categoryColumns + ` FROM categories WHERE is_published = 1 ORDER BY title, id`

func (q *Queries) ListPublishedCategories(ctx context.Context) ([]Category, error) {
	return q.queryCategories(ctx, listPublishedCategories)
}

func (q *Queries) queryCategories(ctx context.Context, query string, args ...any) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Category
	for rows.Next() {
		i, err := scanCategory(rows)
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

const updateCategory = `
UPDATE categories SET title = ?, description = ?, slug = ?, is_published = ?
WHERE id = ?
RETURNING ` + categoryColumns

type UpdateCategoryParams struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	IsPublished bool   `json:"is_published"`
	ID          int64  `json:"id"`
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, updateCategory,
		arg.Title,
		arg.Description,
		arg.Slug,
		arg.IsPublished,
		arg.ID,
	)
	return scanCategory(row)
}

const deleteCategory = `DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteCategory, id)
	return err
}

const countCategories = `SELECT COUNT(*) FROM categories`

func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countCategories).Scan(&count)
	return count, err
}
