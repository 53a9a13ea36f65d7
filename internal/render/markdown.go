// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	// htmlSanitizer strips anything not allowed in user-generated content.
	htmlSanitizer = bluemonday.UGCPolicy()
)

// Markdown renders post or comment text to sanitized HTML.
func Markdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &buf); err != nil {
		slog.Warn("markdown conversion failed", "error", err)
		return template.HTML(htmlSanitizer.Sanitize(template.HTMLEscapeString(text))) //nolint:gosec // sanitized
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized
}
