// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const locationColumns = `id, name, is_published, created_at`

func scanLocation(row interface{ Scan(...any) error }) (Location, error) {
	var i Location
	err := row.Scan(&i.ID, &i.Name, &i.IsPublished, &i.CreatedAt)
	return i, err
}

const createLocation = `
INSERT INTO locations (name, is_published, created_at)
VALUES (?, ?, ?)
RETURNING ` + locationColumns

type CreateLocationParams struct {
	Name        string    `json:"name"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

func (q *Queries) CreateLocation(ctx context.Context, arg CreateLocationParams) (Location, error) {
	row := q.db.QueryRowContext(ctx, createLocation, arg.Name, arg.IsPublished, arg.CreatedAt)
	return scanLocation(row)
}

const listPublishedLocations = `SELECT ` + locationColumns + ` FROM locations WHERE is_published = 1 ORDER BY name, id`

func (q *Queries) ListPublishedLocations(ctx context.Context) ([]Location, error) {
	rows, err := q.db.QueryContext(ctx, listPublishedLocations)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Location
	for rows.Next() {
		i, err := scanLocation(rows)
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

const deleteLocation = `DELETE FROM locations WHERE id = ?`

func (q *Queries) DeleteLocation(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteLocation, id)
	return err
}

const countLocations = `SELECT COUNT(*) FROM locations`

func (q *Queries) CountLocations(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countLocations).Scan(&count)
	return count, err
}
