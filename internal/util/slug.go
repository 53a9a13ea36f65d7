// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers shared across blogicum packages:
// slug generation, nullable form values and safe path joining.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength matches the category slug column limit.
const MaxSlugLength = 64

var (
	slugRegex       = regexp.MustCompile(`[^a-z0-9_-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	validSlug       = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Slugify converts a title to a URL-friendly slug. Non-latin scripts such as
// Cyrillic are transliterated first, so "Путешествия" becomes "puteshestviia".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = unidecode.Unidecode(result)
	result = strings.ToLower(result)
	result = strings.Join(strings.Fields(result), "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxSlugLength {
		result = strings.TrimRight(result[:MaxSlugLength], "-")
	}
	return result
}

// IsValidSlug reports whether s only holds latin letters, digits,
// hyphens and underscores.
func IsValidSlug(s string) bool {
	return len(s) <= MaxSlugLength && validSlug.MatchString(s)
}
