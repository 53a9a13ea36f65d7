// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/cache"
	"github.com/olegiv/blogicum/internal/config"
	"github.com/olegiv/blogicum/internal/handler"
	"github.com/olegiv/blogicum/internal/imaging"
	"github.com/olegiv/blogicum/internal/logging"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/model"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/scheduler"
	"github.com/olegiv/blogicum/internal/service"
	"github.com/olegiv/blogicum/internal/session"
	"github.com/olegiv/blogicum/internal/storage"
	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/internal/version"
	"github.com/olegiv/blogicum/web"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Blogicum - a small multi-author blog\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGICUM_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGICUM_DB_PATH           SQLite database path (default: ./data/blogicum.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGICUM_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGICUM_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGICUM_MEDIA_DIR         Local image directory (default: ./media)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGICUM_S3_BUCKET         Store images in this S3 bucket instead (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGICUM_REDIS_URL         Redis URL for the category cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGICUM_DO_SEED           Create demo categories, locations and posts\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(version.Current())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := cfg.LogLevel
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	eventService := service.NewEventService(db)

	// WARN and ERROR records also land in the event log table
	logger = slog.New(logging.NewEventLogHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}), eventService, slog.LevelWarn))
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := store.Seed(ctx, db); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	if cfg.DoSeed {
		if err := store.SeedDemo(ctx, db); err != nil {
			return fmt.Errorf("seeding demo content: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	cacheConfig := cache.DefaultCacheConfig()
	cacheConfig.RedisURL = cfg.RedisURL
	cacheConfig.Prefix = cfg.CachePrefix
	cacheConfig.DefaultTTL = cfg.CacheTTL
	cacheConfig.MaxEntries = cfg.CacheMaxSize
	if cfg.UseRedisCache() {
		cacheConfig.Type = cache.CacheBackendRedis
	}
	cacheResult, err := cache.NewCacheWithInfo(ctx, cacheConfig)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cacheResult.Cache.Close() }()
	slog.Info("cache initialized", "backend", cacheResult.BackendType, "fallback", cacheResult.IsFallback)

	if cacheResult.IsFallback {
		_ = eventService.System(ctx, model.EventLevelWarning, model.EventCategoryCache, "Redis unavailable, using memory cache", map[string]any{
			"url": cache.SanitizeRedisURL(cfg.RedisURL),
		})
	}

	images, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing image storage: %w", err)
	}

	svc := blog.NewService(db, blog.Options{
		PerPage:  cfg.PostsPerPage,
		Taxonomy: cache.NewTaxonomyCache(cacheResult.Cache, store.New(db), cacheConfig.DefaultTTL),
		Images:   imaging.NewProcessor(cfg.MaxUploadSize),
		Storage:  images,
	})
	if cfg.DoSeed {
		// A shared Redis cache may still hold choices from before the demo rows.
		svc.Taxonomy().Invalidate(ctx)
	}

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		ImageURL:       svc.ImageURL,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	sched := scheduler.New(db, images, logger, scheduler.Options{
		MediaSweepSchedule: cfg.MediaSweepSchedule,
		EventRetention:     cfg.EventRetention(),
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment(), mediaOrigin(images))))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)

	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerPort)
	csrfConfig.ErrorHandler = http.HandlerFunc(renderer.CSRFFailure)
	r.Use(middleware.CSRF(csrfConfig))
	r.Use(middleware.LoadUser(sessionManager, db))
	r.Use(middleware.PrivatePages)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	writeLimiter := middleware.NewRateLimiter(1.0, 10)

	var mediaDir string
	if local, ok := images.(*storage.Local); ok {
		mediaDir = local.Root()
	}

	handlers := handler.Handlers{
		Blog:       handler.NewBlogHandler(db, renderer, svc, cfg.MaxUploadSize),
		Comments:   handler.NewCommentHandler(db, renderer, svc),
		Profile:    handler.NewProfileHandler(db, renderer, svc),
		Auth:       handler.NewAuthHandler(db, renderer, sessionManager, svc, loginProtection),
		Pages:      handler.NewPagesHandler(renderer),
		Health:     handler.NewHealthHandler(db, mediaDir),
		SEO:        handler.NewSEOHandler(svc, cfg.SiteURL, cfg.IsDevelopment()),
		LoginLimit: loginProtection.Middleware(),
		WriteLimit: writeLimiter.Middleware(),
	}
	handlers.Register(r)

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle(handler.RouteStatic, middleware.StaticCache(365*24*time.Hour)(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))

	if mediaDir != "" {
		r.Handle(handler.RouteMedia, middleware.StaticCache(7*24*time.Hour)(http.StripPrefix(storage.MediaURLPrefix, http.FileServer(http.Dir(mediaDir)))))
	}

	r.NotFound(middleware.AppendSlash(r, http.HandlerFunc(renderer.NotFound)))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // image uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	_ = eventService.System(ctx, model.EventLevelInfo, model.EventCategorySystem, "Server started", map[string]any{
		"version": version.Version,
		"env":     cfg.Env,
	})

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// mediaOrigin returns the scheme and host images are served from when
// they live outside this server.
func mediaOrigin(images storage.Storage) string {
	u, err := url.Parse(images.URL("x"))
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
