package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"attendview/internal/attendance"
	"attendview/internal/auth"
	"attendview/internal/config"
	"attendview/internal/httpapi"
	"attendview/internal/logger"
	"attendview/internal/metrics"
	"attendview/internal/render"
	"attendview/internal/store"
	"attendview/internal/view"
)

// dataSource is what every DATA_SOURCE backend provides.
type dataSource interface {
	attendance.Source
	httpapi.Checker
}

func main() {
	cfg := config.Load()
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Error("http server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func runHTTP(cfg config.App, log *slog.Logger) error {
	ctx := context.Background()

	src, closeSrc, err := openDataSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	views, closeViews, viewCheck := openViewStore(cfg)
	defer closeViews()

	policy, err := attendance.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	merger := attendance.NewService(src, cfg.RosterCollection, policy).
		WithObserver(collector).
		WithLogger(log)
	svc := view.NewService(merger, views, render.New(loc, cfg.TimeLayout), cfg.Sessions).
		WithObserver(collector).
		WithLogger(log)

	checks := map[string]httpapi.Checker{"data_source": src}
	if viewCheck != nil {
		checks["view_store"] = viewCheck
	}
	h := httpapi.NewHandler(svc, checks, log)
	r := httpapi.NewRouter(h, httpapi.Options{
		Viewer: auth.ViewerOptions{
			SigningKey: cfg.ViewerSigningKey,
			Issuer:     cfg.ViewerIssuer,
			TTL:        cfg.ViewerTTL,
			Secure:     cfg.Production(),
		},
		RateLimitPerMin: cfg.RateLimitPerMin,
		AllowedOrigins:  cfg.CORSOrigins,
		Metrics:         metrics.Handler(reg),
		Logger:          log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			slog.String("addr", srv.Addr),
			slog.String("data_source", cfg.DataSource),
			slog.String("view_store", cfg.ViewStore))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", slog.String("error", err.Error()))
	}

	log.Info("server exited")
	return nil
}

func openDataSource(ctx context.Context, cfg config.App) (dataSource, func(), error) {
	noop := func() {}
	switch cfg.DataSource {
	case "firestore":
		fs, err := store.NewFirestore(ctx, cfg.FirestoreProjectID, cfg.CredentialsFile)
		if err != nil {
			return nil, noop, err
		}
		return fs, func() { _ = fs.Close() }, nil
	case "pocketbase":
		return store.NewPocketBase(cfg.PocketBaseURL, cfg.PocketBaseToken), noop, nil
	case "postgres":
		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return db, func() { _ = db.Close() }, nil
	case "memory":
		if cfg.SeedFile == "" {
			return store.NewMemory(), noop, nil
		}
		m, err := store.LoadMemory(cfg.SeedFile)
		if err != nil {
			return nil, noop, err
		}
		return m, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown DATA_SOURCE %q", cfg.DataSource)
}

func openViewStore(cfg config.App) (view.Store, func(), httpapi.Checker) {
	if cfg.ViewStore == "redis" {
		rdb := store.NewRedis(cfg.RedisAddr, "attendview", cfg.ViewTTL)
		return view.NewRedisStore(rdb), func() { _ = rdb.Close() }, rdb
	}
	if cfg.ViewStore != "memory" {
		slog.Warn("unknown VIEW_STORE, using memory", slog.String("view_store", cfg.ViewStore))
	}
	return view.NewMemoryStore(), func() {}, nil
}
