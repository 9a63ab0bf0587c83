package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"attendview/internal/config"
	"attendview/internal/logger"
	"attendview/internal/store"
)

// Seed loads a JSON fixture of collections into the Postgres documents
// table used by DATA_SOURCE=postgres.
func main() {
	cfg := config.Load()
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	file := flag.String("file", cfg.SeedFile, "JSON file mapping collection names to document arrays")
	flag.Parse()
	if *file == "" {
		log.Error("no seed file given (-file or SEED_FILE)")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fixture, err := store.LoadMemory(*file)
	if err != nil {
		log.Error("load fixture failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		_ = db.Close()
		log.Error("db connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Error("ensure schema failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, name := range fixture.Collections() {
		docs, err := fixture.ListDocuments(ctx, name)
		if err != nil {
			log.Error("read collection failed", slog.String("collection", name), slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := db.PutDocuments(ctx, name, docs); err != nil {
			log.Error("seed collection failed", slog.String("collection", name), slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info("seeded collection", slog.String("collection", name), slog.Int("documents", len(docs)))
	}
}
