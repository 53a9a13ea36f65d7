// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Field limits for user-submitted content.
const (
	MaxTitleLength    = 256
	MaxNameLength     = 256
	MaxPostTextLength = 20000
	MaxCommentLength  = 2000
	MaxUsernameLength = 150
	MaxPersonName     = 150
	MaxEmailLength    = 254
	MinPasswordLength = 8
)

// ImageDir is the media sub-directory holding post images.
const ImageDir = "blogicum_images"
