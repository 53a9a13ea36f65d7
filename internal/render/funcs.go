// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
)

// Date layouts used by the templates.
const (
	DateLayout          = "2 January 2006"
	DateTimeLayout      = "2 January 2006, 15:04"
	DateTimeInputLayout = "2006-01-02T15:04"
)

// templateFuncs returns custom template functions.
func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format(DateLayout)
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format(DateTimeLayout)
		},
		"markdown":      Markdown,
		"truncateWords": TruncateWords,
		"imageURL": func(key string) string {
			if key == "" {
				return ""
			}
			return r.imageURL(key)
		},
		"postURL":          PostURL,
		"postEditURL":      PostEditURL,
		"postDeleteURL":    PostDeleteURL,
		"commentURL":       CommentURL,
		"commentEditURL":   CommentEditURL,
		"commentDeleteURL": CommentDeleteURL,
		"profileURL":       ProfileURL,
		"categoryURL":      CategoryURL,
		"pageURL":          PageURL,
		"fullName": func(first, last string) string {
			return strings.TrimSpace(first + " " + last)
		},
	}
}

// TruncateWords keeps the first n words of s, appending an ellipsis when
// anything was cut.
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " …"
}

// PostURL returns the detail page of a post.
func PostURL(id int64) string {
	return fmt.Sprintf("/posts/%d/", id)
}

// PostEditURL returns the edit form of a post.
func PostEditURL(id int64) string {
	return fmt.Sprintf("/posts/%d/edit/", id)
}

// PostDeleteURL returns the delete confirmation of a post.
func PostDeleteURL(id int64) string {
	return fmt.Sprintf("/posts/%d/delete/", id)
}

// CommentURL returns the endpoint adding a comment to a post.
func CommentURL(postID int64) string {
	return fmt.Sprintf("/posts/%d/comment/", postID)
}

// CommentEditURL returns the edit form of a comment.
func CommentEditURL(postID, commentID int64) string {
	return fmt.Sprintf("/posts/%d/comment/%d/edit/", postID, commentID)
}

// CommentDeleteURL returns the delete confirmation of a comment.
func CommentDeleteURL(postID, commentID int64) string {
	return fmt.Sprintf("/posts/%d/comment/%d/delete/", postID, commentID)
}

// ProfileURL returns a user's profile feed.
func ProfileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

// CategoryURL returns a category feed.
func CategoryURL(slug string) string {
	return "/category/" + url.PathEscape(slug) + "/"
}

// PageURL returns base with the page query parameter set.
func PageURL(base string, page int) string {
	return fmt.Sprintf("%s?page=%d", base, page)
}
