// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import (
	"time"

	"github.com/olegiv/blogicum/internal/store"
)

// IsPubliclyVisible reports whether anyone may see the post at now: it is
// published, its category (if any) is published and its pub_date has
// passed. The store's listing queries apply the same filter in SQL.
func IsPubliclyVisible(p store.PostFeedRow, now time.Time) bool {
	if !p.IsPublished {
		return false
	}
	if p.CategoryID.Valid && !(p.CategoryIsPublished.Valid && p.CategoryIsPublished.Bool) {
		return false
	}
	return !p.PubDate.After(now)
}

// CanView reports whether viewerID may see the post. Authors always see
// their own posts; viewerID 0 is an anonymous visitor.
func CanView(p store.PostFeedRow, viewerID int64, now time.Time) bool {
	if viewerID != 0 && viewerID == p.AuthorID {
		return true
	}
	return IsPubliclyVisible(p, now)
}
