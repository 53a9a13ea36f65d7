// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/blogicum/internal/auth"
	"github.com/olegiv/blogicum/internal/util"
)

// Default author credentials
const (
	DefaultAuthorUsername = "admin"
	DefaultAuthorPassword = "changeme"
	DefaultAuthorEmail    = "admin@example.com"
)

type seedCategory struct {
	title       string
	description string
	published   bool
}

var demoCategories = []seedCategory{
	{"Путешествия", "Заметки о поездках и дальних странах.", true},
	{"Без рубрики", "Всё, что не попало в другие разделы.", true},
	{"Drafts", "Work in progress, hidden from readers.", false},
}

var demoLocations = []string{
	"Остров отчаянья",
	"Планета Земля",
}

type seedPost struct {
	title    string
	text     string
	category int // index into demoCategories, -1 for none
	location int // index into demoLocations, -1 for none
	age      time.Duration
}

var demoPosts = []seedPost{
	{
		title:    "Ночь у костра",
		text:     "Мы разбили лагерь у самой воды и до утра слушали **прибой**.",
		category: 0,
		location: 0,
		age:      72 * time.Hour,
	},
	{
		title:    "Hello, blogicum",
		text:     "The first post. Posts support *markdown* and optional images.",
		category: 1,
		location: -1,
		age:      48 * time.Hour,
	},
	{
		title:    "Unsorted thoughts",
		text:     "A post without a category is still visible to everyone.",
		category: -1,
		location: 1,
		age:      24 * time.Hour,
	},
}

// Seed creates the default author when missing.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	_, err := queries.GetUserByUsername(ctx, DefaultAuthorUsername)
	if err == nil {
		slog.Info("default author already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for default author: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAuthorPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     DefaultAuthorUsername,
		Email:        DefaultAuthorEmail,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating default author: %w", err)
	}

	slog.Info("created default author",
		"id", user.ID,
		"username", user.Username,
		"password", DefaultAuthorPassword,
	)

	return nil
}

// SeedDemo fills an empty database with demo categories, locations and
// posts owned by the default author. It is a no-op once categories exist.
func SeedDemo(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	count, err := queries.CountCategories(ctx)
	if err != nil {
		return fmt.Errorf("counting categories: %w", err)
	}
	if count > 0 {
		slog.Info("demo content already present, skipping")
		return nil
	}

	author, err := queries.GetUserByUsername(ctx, DefaultAuthorUsername)
	if err != nil {
		return fmt.Errorf("loading default author: %w", err)
	}

	return RunInTx(ctx, db, func(q *Queries) error {
		now := time.Now()

		categoryIDs := make([]int64, 0, len(demoCategories))
		for _, c := range demoCategories {
			category, err := q.CreateCategory(ctx, CreateCategoryParams{
				Title:       c.title,
				Description: c.description,
				Slug:        util.Slugify(c.title),
				IsPublished: c.published,
				CreatedAt:   now,
			})
			if err != nil {
				return fmt.Errorf("creating category %q: %w", c.title, err)
			}
			categoryIDs = append(categoryIDs, category.ID)
		}

		locationIDs := make([]int64, 0, len(demoLocations))
		for _, name := range demoLocations {
			location, err := q.CreateLocation(ctx, CreateLocationParams{
				Name:        name,
				IsPublished: true,
				CreatedAt:   now,
			})
			if err != nil {
				return fmt.Errorf("creating location %q: %w", name, err)
			}
			locationIDs = append(locationIDs, location.ID)
		}

		for _, p := range demoPosts {
			params := CreatePostParams{
				Title:       p.title,
				Text:        p.text,
				PubDate:     now.Add(-p.age),
				AuthorID:    author.ID,
				IsPublished: true,
				CreatedAt:   now,
			}
			if p.category >= 0 {
				params.CategoryID = sql.NullInt64{Int64: categoryIDs[p.category], Valid: true}
			}
			if p.location >= 0 {
				params.LocationID = sql.NullInt64{Int64: locationIDs[p.location], Valid: true}
			}
			if _, err := q.CreatePost(ctx, params); err != nil {
				return fmt.Errorf("creating post %q: %w", p.title, err)
			}
		}

		slog.Info("seeded demo content",
			"categories", len(demoCategories),
			"locations", len(demoLocations),
			"posts", len(demoPosts),
		)
		return nil
	})
}
