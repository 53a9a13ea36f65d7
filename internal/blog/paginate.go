// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import (
	"errors"
	"strconv"
	"strings"
)

// DefaultPerPage is the feed page size.
const DefaultPerPage = 10

// pageWindow is how many page numbers Numbers returns around the current one.
const pageWindow = 5

// Page describes one slice of a listing.
type Page struct {
	Number     int
	TotalPages int
	TotalItems int64
	PerPage    int
}

// Paginate resolves the requested page leniently: a missing or
// non-numeric value gives the first page, anything outside 1..last gives
// the last page, including numbers too large for an int. An empty listing has a single empty page.
func Paginate(total int64, perPage int, raw string) Page {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case errors.Is(err, strconv.ErrRange):
		number = totalPages
	case err != nil:
		number = 1
	case number < 1 || number > totalPages:
		number = totalPages
	}

	return Page{
		Number:     number,
		TotalPages: totalPages,
		TotalItems: total,
		PerPage:    perPage,
	}
}

// Limit returns the SQL LIMIT for the page.
func (p Page) Limit() int64 {
	return int64(p.PerPage)
}

// Offset returns the SQL OFFSET for the page.
func (p Page) Offset() int64 {
	return int64(p.Number-1) * int64(p.PerPage)
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool {
	return p.Number > 1
}

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// HasOtherPages reports whether the listing spans more than one page.
func (p Page) HasOtherPages() bool {
	return p.TotalPages > 1
}

// Numbers returns up to five page numbers centred on the current page.
func (p Page) Numbers() []int {
	start := p.Number - pageWindow/2
	end := p.Number + pageWindow/2
	if start < 1 {
		start = 1
		end = pageWindow
	}
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - pageWindow + 1
		if start < 1 {
			start = 1
		}
	}

	numbers := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		numbers = append(numbers, i)
	}
	return numbers
}
