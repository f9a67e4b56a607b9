package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/acme/autocert"

	"blogyard/blog"
	"blogyard/cache"
	"blogyard/config"
	"blogyard/feed"
	"blogyard/follow"
	"blogyard/handler"
	"blogyard/store"
)

var serveCmd = &cli.Command{
	Name:   "serve",
	Usage:  "Migrate the database and run the web server",
	Action: serve,
}

func serve(ctx context.Context, _ *cli.Command) error {
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	timelineStore, closeTimeline, err := newTimelineStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeTimeline()

	graph := follow.NewGraph(s, logger)
	h := &handler.Handler{
		Logger:   logger.With("component", "http"),
		Config:   cfg,
		Store:    s,
		Feed:     feed.NewEngine(s, graph, cfg.PostsPerPage),
		Follows:  graph,
		Blog:     blog.NewService(s, &blog.Media{Root: cfg.MediaRoot}, logger),
		Timeline: cache.NewTimeline(timelineStore, logger),
	}

	return listen(ctx, h.Echo(), cfg, logger)
}

// openStore opens the database and brings its schema up to date.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Store, error) {
	s, err := store.Open(cfg.DBURL)
	if err != nil {
		return nil, err
	}

	m, err := store.NewMigrator(s.DB, logger)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrator: %w", err)
	}
	if err := m.Up(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func newTimelineStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	if cfg.CacheBackend == config.CacheNATS {
		n, err := cache.NewNATSStore(ctx, cfg.NATSURL, cache.DefaultBucket, cfg.TimelineTTL)
		if err != nil {
			return nil, nil, err
		}
		return n, n.Close, nil
	}
	return cache.NewMemoryStore(16, cfg.TimelineTTL), func() {}, nil
}

func listen(ctx context.Context, e *echo.Echo, cfg *config.Config, logger *slog.Logger) error {
	errs := make(chan error, 1)

	if cfg.Addr != "" {
		logger.Info("Listening", "addr", cfg.Addr)
		go func() { errs <- e.Start(cfg.Addr) }()
	} else {
		// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
		e.AutoTLSManager.Cache = autocert.DirCache("/var/www/.cache")
		if cfg.WhitelistHost != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.WhitelistHost)
		}
		e.Pre(middleware.HTTPSRedirect())
		logger.Info("Listening with automatic TLS", "host", cfg.WhitelistHost)
		go func() { errs <- e.StartAutoTLS(":443") }()
	}

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
