// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		raw       string
		wantPage  int
		wantPages int
	}{
		{"empty listing", 0, "", 1, 1},
		{"empty listing with page", 0, "5", 1, 1},
		{"missing page", 25, "", 1, 3},
		{"second page", 25, "2", 2, 3},
		{"last page", 25, "3", 3, 3},
		{"not a number", 25, "abc", 1, 3},
		{"beyond last", 25, "9", 3, 3},
		{"too large for int", 25, "99999999999999999999", 3, 3},
		{"zero", 25, "0", 3, 3},
		{"negative", 25, "-1", 3, 3},
		{"exact multiple", 30, "3", 3, 3},
		{"padded number", 25, " 2 ", 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.total, 10, tt.raw)
			assert.Equal(t, tt.wantPage, p.Number)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.total, p.TotalItems)
		})
	}
}

func TestPaginate_DefaultPerPage(t *testing.T) {
	p := Paginate(11, 0, "")
	assert.Equal(t, DefaultPerPage, p.PerPage)
	assert.Equal(t, 2, p.TotalPages)
}

func TestPage_LimitOffset(t *testing.T) {
	p := Paginate(95, 10, "3")
	assert.Equal(t, int64(10), p.Limit())
	assert.Equal(t, int64(20), p.Offset())

	first := Paginate(95, 10, "")
	assert.Equal(t, int64(0), first.Offset())
}

func TestPage_Navigation(t *testing.T) {
	single := Paginate(4, 10, "")
	assert.False(t, single.HasPrev())
	assert.False(t, single.HasNext())
	assert.False(t, single.HasOtherPages())

	middle := Paginate(30, 10, "2")
	assert.True(t, middle.HasPrev())
	assert.True(t, middle.HasNext())
	assert.True(t, middle.HasOtherPages())

	last := Paginate(30, 10, "3")
	assert.True(t, last.HasPrev())
	assert.False(t, last.HasNext())
}

func TestPage_Numbers(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		raw   string
		want  []int
	}{
		{"one page", 3, "", []int{1}},
		{"two pages", 20, "2", []int{1, 2}},
		{"start", 100, "1", []int{1, 2, 3, 4, 5}},
		{"middle", 100, "5", []int{3, 4, 5, 6, 7}},
		{"end", 100, "10", []int{6, 7, 8, 9, 10}},
		{"near end", 100, "9", []int{6, 7, 8, 9, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(tt.total, 10, tt.raw).Numbers())
		})
	}
}
