// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/url"
	"strconv"

	"github.com/olegiv/blogicum/internal/blog"
)

// Pagination is the view model of the "pagination" partial.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	HasPrev     bool
	HasNext     bool

	FirstURL string
	PrevURL  string
	NextURL  string
	LastURL  string

	Pages []PaginationPage
}

// PaginationPage is one numbered link, or a gap when IsEllipsis is set.
type PaginationPage struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// pageLinker builds links to other pages of the same listing, keeping
// every non-empty query parameter except page.
type pageLinker struct {
	path  string
	query url.Values
}

func newPageLinker(path string, query url.Values) pageLinker {
	kept := url.Values{}
	for k, vs := range query {
		if k != "page" && len(vs) > 0 && vs[0] != "" {
			kept[k] = vs
		}
	}
	return pageLinker{path: path, query: kept}
}

func (l pageLinker) url(n int) string {
	q := url.Values{"page": {strconv.Itoa(n)}}
	for k, vs := range l.query {
		q[k] = vs
	}
	return l.path + "?" + q.Encode()
}

// BuildPagination lays out the links for page of the listing at path. The
// window from page.Numbers is framed by the first and last pages, with a
// gap marker wherever numbers are skipped.
func BuildPagination(page blog.Page, path string, query url.Values) Pagination {
	link := newPageLinker(path, query)
	p := Pagination{
		CurrentPage: page.Number,
		TotalPages:  page.TotalPages,
		TotalItems:  page.TotalItems,
		HasPrev:     page.HasPrev(),
		HasNext:     page.HasNext(),
		FirstURL:    link.url(1),
		PrevURL:     link.url(page.Number - 1),
		NextURL:     link.url(page.Number + 1),
		LastURL:     link.url(page.TotalPages),
	}

	window := page.Numbers()
	if len(window) == 0 {
		return p
	}

	numbers := window
	if window[0] > 1 {
		numbers = append([]int{1}, numbers...)
	}
	if last := window[len(window)-1]; last < page.TotalPages {
		numbers = append(numbers, page.TotalPages)
	}

	prev := 0
	for _, n := range numbers {
		if n > prev+1 {
			p.Pages = append(p.Pages, PaginationPage{IsEllipsis: true})
		}
		p.Pages = append(p.Pages, PaginationPage{Number: n, URL: link.url(n), IsCurrent: n == page.Number})
		prev = n
	}
	return p
}
