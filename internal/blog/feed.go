// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olegiv/blogicum/internal/store"
)

// Feed is one page of posts annotated with comment counts.
type Feed struct {
	Posts []store.PostFeedRow
	Page  Page
}

// CategoryFeed is a feed restricted to one category.
type CategoryFeed struct {
	Category store.Category
	Feed
}

// ProfileFeed is a feed of one author's posts.
type ProfileFeed struct {
	Profile store.User
	IsOwner bool
	Feed
}

// PostDetail is a visible post with its comments, oldest first.
type PostDetail struct {
	Post     store.PostFeedRow
	Comments []store.CommentWithAuthorRow
	IsAuthor bool
}

// paginate counts, resolves the page and lists it.
func (s *Service) paginate(rawPage string, count func() (int64, error), list func(Page) ([]store.PostFeedRow, error)) (*Feed, error) {
	total, err := count()
	if err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}

	page := Paginate(total, s.perPage, rawPage)
	if total == 0 {
		return &Feed{Page: page}, nil
	}

	posts, err := list(page)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return &Feed{Posts: posts, Page: page}, nil
}

// HomeFeed returns every publicly visible post, newest first.
func (s *Service) HomeFeed(ctx context.Context, rawPage string) (*Feed, error) {
	now := s.now()
	return s.paginate(rawPage,
		func() (int64, error) {
			return s.queries.CountPublishedPosts(ctx, now)
		},
		func(p Page) ([]store.PostFeedRow, error) {
			return s.queries.ListPublishedPosts(ctx, store.ListPublishedPostsParams{
				Now:    now,
				Limit:  p.Limit(),
				Offset: p.Offset(),
			})
		},
	)
}

// CategoryFeed returns the publicly visible posts of a published category.
// An unknown or unpublished slug yields ErrNotFound.
func (s *Service) CategoryFeed(ctx context.Context, slug, rawPage string) (*CategoryFeed, error) {
	category, err := s.taxonomy.PublishedCategory(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading category %q: %w", slug, err)
	}

	now := s.now()
	feed, err := s.paginate(rawPage,
		func() (int64, error) {
			return s.queries.CountPublishedPostsByCategory(ctx, store.CountPublishedPostsByCategoryParams{
				CategoryID: category.ID,
				Now:        now,
			})
		},
		func(p Page) ([]store.PostFeedRow, error) {
			return s.queries.ListPublishedPostsByCategory(ctx, store.ListPublishedPostsByCategoryParams{
				CategoryID: category.ID,
				Now:        now,
				Limit:      p.Limit(),
				Offset:     p.Offset(),
			})
		},
	)
	if err != nil {
		return nil, err
	}

	return &CategoryFeed{Category: *category, Feed: *feed}, nil
}

// ProfileFeed returns an author's posts. The author sees every post in
// any state; other viewers only the publicly visible ones.
func (s *Service) ProfileFeed(ctx context.Context, username string, viewerID int64, rawPage string) (*ProfileFeed, error) {
	profile, err := s.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading profile %q: %w", username, err)
	}

	isOwner := viewerID != 0 && viewerID == profile.ID
	now := s.now()

	var feed *Feed
	if isOwner {
		feed, err = s.paginate(rawPage,
			func() (int64, error) {
				return s.queries.CountPostsByAuthor(ctx, profile.ID)
			},
			func(p Page) ([]store.PostFeedRow, error) {
				return s.queries.ListPostsByAuthor(ctx, store.ListPostsByAuthorParams{
					AuthorID: profile.ID,
					Limit:    p.Limit(),
					Offset:   p.Offset(),
				})
			},
		)
	} else {
		feed, err = s.paginate(rawPage,
			func() (int64, error) {
				return s.queries.CountPublishedPostsByAuthor(ctx, store.CountPublishedPostsByAuthorParams{
					AuthorID: profile.ID,
					Now:      now,
				})
			},
			func(p Page) ([]store.PostFeedRow, error) {
				return s.queries.ListPublishedPostsByAuthor(ctx, store.ListPublishedPostsByAuthorParams{
					AuthorID: profile.ID,
					Now:      now,
					Limit:    p.Limit(),
					Offset:   p.Offset(),
				})
			},
		)
	}
	if err != nil {
		return nil, err
	}

	return &ProfileFeed{Profile: profile, IsOwner: isOwner, Feed: *feed}, nil
}

// VisiblePost loads a post the viewer is allowed to see. Missing posts and
// posts hidden from the viewer both yield ErrNotFound.
func (s *Service) VisiblePost(ctx context.Context, postID, viewerID int64) (*store.PostFeedRow, error) {
	post, err := s.queries.GetPostDetail(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading post %d: %w", postID, err)
	}
	if !CanView(post, viewerID, s.now()) {
		return nil, ErrNotFound
	}
	return &post, nil
}

// PostDetail loads a visible post and its comments.
func (s *Service) PostDetail(ctx context.Context, postID, viewerID int64) (*PostDetail, error) {
	post, err := s.VisiblePost(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}

	comments, err := s.queries.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("listing comments of post %d: %w", postID, err)
	}

	return &PostDetail{
		Post:     *post,
		Comments: comments,
		IsAuthor: viewerID != 0 && viewerID == post.AuthorID,
	}, nil
}

// maxSitemapPosts is the sitemap protocol's URL limit minus room for the
// fixed pages and categories.
const maxSitemapPosts = 45000

// SitemapContent lists what the public sitemap links to: published
// categories and the newest publicly visible posts.
func (s *Service) SitemapContent(ctx context.Context) ([]store.Category, []store.PostFeedRow, error) {
	categories, err := s.queries.ListPublishedCategories(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing categories: %w", err)
	}

	posts, err := s.queries.ListPublishedPosts(ctx, store.ListPublishedPostsParams{
		Now:   s.now(),
		Limit: maxSitemapPosts,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("listing posts: %w", err)
	}
	return categories, posts, nil
}
