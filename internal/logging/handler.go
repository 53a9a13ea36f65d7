// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors warnings and errors
// into the events table.
package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/model"
	"github.com/olegiv/blogicum/internal/service"
)

// categoryAttr overrides the inferred event category.
const categoryAttr = "category"

// categoryKeywords maps message keywords to event categories. The first
// match wins.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{model.EventCategoryAuth, []string{"login", "logout", "auth", "csrf"}},
	{model.EventCategoryComment, []string{"comment"}},
	{model.EventCategoryPost, []string{"post"}},
	{model.EventCategoryMedia, []string{"image", "media", "upload"}},
	{model.EventCategoryUser, []string{"user", "profile"}},
	{model.EventCategoryCache, []string{"cache", "redis"}},
}

type eventWriteKey struct{}

// EventLogHandler wraps another slog.Handler and also records every
// record at or above its level as an audit event.
type EventLogHandler struct {
	inner  slog.Handler
	events *service.EventService
	level  slog.Leveler
	attrs  []slog.Attr
	group  string
}

// NewEventLogHandler wraps inner. Records at level or above are written to
// events.
func NewEventLogHandler(inner slog.Handler, events *service.EventService, level slog.Leveler) *EventLogHandler {
	return &EventLogHandler{inner: inner, events: events, level: level}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler. Records logged while an event is being
// written are only forwarded, so a failing insert cannot recurse.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level < h.level.Level() || ctx.Value(eventWriteKey{}) != nil {
		return nil
	}

	category, meta := h.split(r)
	writeCtx := context.WithValue(context.Background(), eventWriteKey{}, true)
	_ = h.events.Record(writeCtx, service.Event{
		Level:    eventLevel(r.Level),
		Category: category,
		Message:  r.Message,
		URL:      middleware.GetRequestPath(ctx),
		Metadata: meta,
	})
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	for _, a := range attrs {
		c.attrs = append(c.attrs[:len(c.attrs):len(c.attrs)], h.qualify(a))
	}
	return &c
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)
	if name != "" {
		c.group = h.qualifyKey(name)
	}
	return &c
}

func (h *EventLogHandler) qualifyKey(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *EventLogHandler) qualify(a slog.Attr) slog.Attr {
	if a.Key == categoryAttr {
		return a
	}
	return slog.Attr{Key: h.qualifyKey(a.Key), Value: a.Value}
}

// split returns the event category and the remaining attributes as
// metadata.
func (h *EventLogHandler) split(r slog.Record) (string, map[string]any) {
	var category string
	meta := make(map[string]any, len(h.attrs)+r.NumAttrs())

	add := func(a slog.Attr) {
		if a.Key == categoryAttr {
			category = a.Value.String()
			return
		}
		meta[a.Key] = attrValue(a.Value)
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(h.qualify(a))
		return true
	})

	if category == "" {
		category = inferCategory(r.Message)
	}
	return category, meta
}

// attrValue keeps JSON-friendly kinds and stringifies the rest.
func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	default:
		return v.String()
	}
}

func inferCategory(message string) string {
	msg := strings.ToLower(message)
	for _, k := range categoryKeywords {
		for _, w := range k.words {
			if strings.Contains(msg, w) {
				return k.category
			}
		}
	}
	return model.EventCategorySystem
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}
