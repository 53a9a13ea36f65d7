// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the audit event log written by handlers and
// background jobs.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/blogicum/internal/model"
	"github.com/olegiv/blogicum/internal/store"
)

// DefaultEventRetention is how long events are kept before the scheduler
// removes them.
const DefaultEventRetention = 90 * 24 * time.Hour

// Event is one audit log entry. Empty Level means info.
type Event struct {
	Level    string
	Category string
	Message  string
	UserID   *int64
	IP       string
	URL      string
	Metadata map[string]any
}

// EventService writes and prunes audit events.
type EventService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
		now:     time.Now,
	}
}

// Record stores e. Failures are logged and returned; callers on the
// request path usually ignore them.
func (s *EventService) Record(ctx context.Context, e Event) error {
	if e.Level == "" {
		e.Level = model.EventLevelInfo
	}

	var userID sql.NullInt64
	if e.UserID != nil {
		userID = sql.NullInt64{Int64: *e.UserID, Valid: true}
	}

	meta := "{}"
	if len(e.Metadata) > 0 {
		if b, err := json.Marshal(e.Metadata); err == nil {
			meta = string(b)
		} else {
			slog.WarnContext(ctx, "event metadata not serializable", "category", e.Category, "error", err)
		}
	}

	if _, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:      e.Level,
		Category:   e.Category,
		Message:    e.Message,
		UserID:     userID,
		Metadata:   meta,
		IpAddress:  e.IP,
		RequestUrl: e.URL,
		CreatedAt:  s.now(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to record event", "category", e.Category, "message", e.Message, "error", err)
		return fmt.Errorf("recording %s event: %w", e.Category, err)
	}
	return nil
}

// System records an event raised by the process itself rather than a request.
func (s *EventService) System(ctx context.Context, level, category, message string, metadata map[string]any) error {
	return s.Record(ctx, Event{Level: level, Category: category, Message: message, Metadata: metadata})
}

// Prune removes events older than olderThan.
func (s *EventService) Prune(ctx context.Context, olderThan time.Duration) error {
	return s.queries.DeleteOldEvents(ctx, s.now().Add(-olderThan))
}
