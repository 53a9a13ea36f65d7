// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs blogicum's housekeeping jobs: sweeping image files
// no post references and trimming the event log.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/blogicum/internal/model"
	"github.com/olegiv/blogicum/internal/service"
	"github.com/olegiv/blogicum/internal/storage"
	"github.com/olegiv/blogicum/internal/store"
)

// Default job schedules.
const (
	DefaultMediaSweepSchedule   = "0 3 * * *"
	DefaultEventCleanupSchedule = "30 3 * * *"
)

// jobTimeout bounds a single job run.
const jobTimeout = 10 * time.Minute

// DefaultOrphanGracePeriod is how old an unreferenced image must be before
// the sweep removes it. Uploads are stored before their post row is
// written, so younger files may still be claimed.
const DefaultOrphanGracePeriod = time.Hour

// Options configures the scheduler.
type Options struct {
	MediaSweepSchedule   string
	EventCleanupSchedule string
	EventRetention       time.Duration
	OrphanGracePeriod    time.Duration
}

// JobInfo describes a registered job.
type JobInfo struct {
	Name     string
	Schedule string
	NextRun  time.Time
}

type job struct {
	name     string
	schedule string
	entryID  cron.EntryID
}

// Scheduler handles periodic maintenance tasks.
type Scheduler struct {
	db      *sql.DB
	storage storage.Storage
	events  *service.EventService
	cron    *cron.Cron
	logger  *slog.Logger
	opts    Options
	jobs    []job
	now     func() time.Time
}

// New creates a new scheduler instance.
func New(db *sql.DB, st storage.Storage, logger *slog.Logger, opts Options) *Scheduler {
	if opts.MediaSweepSchedule == "" {
		opts.MediaSweepSchedule = DefaultMediaSweepSchedule
	}
	if opts.EventCleanupSchedule == "" {
		opts.EventCleanupSchedule = DefaultEventCleanupSchedule
	}
	if opts.EventRetention <= 0 {
		opts.EventRetention = service.DefaultEventRetention
	}
	if opts.OrphanGracePeriod <= 0 {
		opts.OrphanGracePeriod = DefaultOrphanGracePeriod
	}

	var events *service.EventService
	if db != nil {
		events = service.NewEventService(db)
	}

	return &Scheduler{
		db:      db,
		storage: st,
		events:  events,
		cron:    cron.New(),
		logger:  logger,
		opts:    opts,
		now:     time.Now,
	}
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// Start registers the jobs and begins running them.
func (s *Scheduler) Start() error {
	if err := s.add("media_sweep", s.opts.MediaSweepSchedule, func(ctx context.Context) error {
		_, err := s.SweepOrphanImages(ctx)
		return err
	}); err != nil {
		return err
	}

	if err := s.add("event_cleanup", s.opts.EventCleanupSchedule, s.CleanupEvents); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// add registers fn under name, logging failures of each run.
func (s *Scheduler) add(name, schedule string, fn func(context.Context) error) error {
	if err := ValidateSchedule(schedule); err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}

	id, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}

	s.jobs = append(s.jobs, job{name: name, schedule: schedule, entryID: id})
	return nil
}

// Jobs returns the registered jobs with their next run time.
func (s *Scheduler) Jobs() []JobInfo {
	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		infos = append(infos, JobInfo{
			Name:     j.name,
			Schedule: j.schedule,
			NextRun:  s.cron.Entry(j.entryID).Next,
		})
	}
	return infos
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// SweepOrphanImages deletes stored post images that no post references and
// that are older than the grace period, and returns how many were removed.
func (s *Scheduler) SweepOrphanImages(ctx context.Context) (int, error) {
	if s.storage == nil || s.db == nil {
		return 0, nil
	}

	objects, err := s.storage.List(ctx, model.ImageDir+"/")
	if err != nil {
		return 0, fmt.Errorf("listing images: %w", err)
	}
	if len(objects) == 0 {
		return 0, nil
	}

	images, err := store.New(s.db).ListPostImages(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing referenced images: %w", err)
	}
	referenced := make(map[string]struct{}, len(images))
	for _, image := range images {
		referenced[image] = struct{}{}
	}

	cutoff := s.now().Add(-s.opts.OrphanGracePeriod)
	removed := 0
	for _, obj := range objects {
		key := obj.Key
		if _, ok := referenced[key]; ok {
			continue
		}
		if !strings.HasPrefix(key, model.ImageDir+"/") || obj.ModTime.After(cutoff) {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete orphan image", "key", key, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("removed orphan images", "count", removed)
		if s.events != nil {
			_ = s.events.System(ctx, model.EventLevelInfo, model.EventCategoryMedia,
				"Orphan images removed by scheduler",
				map[string]any{"count": removed, "scanned": len(objects)})
		}
	}

	return removed, nil
}

// CleanupEvents removes events older than the retention period.
func (s *Scheduler) CleanupEvents(ctx context.Context) error {
	if s.events == nil {
		return nil
	}
	if err := s.events.Prune(ctx, s.opts.EventRetention); err != nil {
		return fmt.Errorf("deleting old events: %w", err)
	}
	return nil
}
