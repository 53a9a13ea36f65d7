// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"strconv"
)

// ParseOptionalID parses an optional foreign key from a form select.
// Empty input is a valid NULL. Anything but a positive integer is rejected.
func ParseOptionalID(s string) (sql.NullInt64, bool) {
	if s == "" {
		return sql.NullInt64{}, true
	}
	id, ok := ParsePositiveID(s)
	if !ok {
		return sql.NullInt64{}, false
	}
	return sql.NullInt64{Int64: id, Valid: true}, true
}

// FormatNullInt64 renders an optional foreign key back into a form value.
func FormatNullInt64(n sql.NullInt64) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Int64, 10)
}

// ParsePositiveID parses a URL path identifier. It returns false for
// anything that is not a positive integer.
func ParsePositiveID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
