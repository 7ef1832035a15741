package main

import (
	"context"
	"github.com/badgerinator/businessProcessAnalysis/internal/config"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/logging"
	"github.com/badgerinator/businessProcessAnalysis/internal/pprofserver"
	"github.com/badgerinator/businessProcessAnalysis/internal/questionnaire"
	"github.com/badgerinator/businessProcessAnalysis/internal/repositories"
	"github.com/badgerinator/businessProcessAnalysis/internal/sqlite"
	"github.com/badgerinator/businessProcessAnalysis/internal/state"
	"github.com/badgerinator/businessProcessAnalysis/internal/timer"
	"log/slog"
	"os"
	"time"
)

type application struct {
	logger    *slog.Logger
	store     *state.Store
	trackers  *timer.Registry
	snapshots *repositories.SnapshotRepository
	slot      string
	now       func() time.Time
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	cfg, err := config.Load(lookupEnv)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	if cfg.PprofAddr != "" {
		pprofserver.Launch(ctx, cfg.PprofAddr, logger)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SQLiteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(closeErr))
		}
	}()
	optimizerCtx, stopOptimizer := context.WithCancel(ctx)
	defer stopOptimizer()
	go db.StartOptimizer(optimizerCtx, cfg.OptimizeInterval)

	snapshots := repositories.NewSnapshotRepository(db, logger)
	store := state.New(ctx, logger, state.WithPersister(snapshots, cfg.Slot))
	if cfg.Seed {
		if _, err = store.AddQuestionnaire(ctx, questionnaire.Seed()); err != nil {
			return errors.Wrap(err, "seed questionnaire")
		}
	}

	app := application{
		logger:    logger,
		store:     store,
		snapshots: snapshots,
		slot:      cfg.Slot,
		now:       time.Now,
	}
	app.trackers = timer.NewRegistry(store, cfg.TickInterval, logger, timer.WithEvents(timer.Events{
		OnWarning: app.sectionWarning,
		OnTimeUp:  app.sectionTimeUp,
	}))

	return app.configureAndStartServer(ctx, cfg.Addr)
}

func main() {
	ctx := context.Background()
	if err := config.LoadDotEnv(); err != nil {
		slog.Default().LogAttrs(ctx, slog.LevelError, "failed to load .env", errors.SlogError(err))
		os.Exit(1)
	}

	level := logging.ParseLevel(os.Getenv("INTERVIEWKIT_LOG_LEVEL"))
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   level == slog.LevelDebug,
		Level:       level,
		ReplaceAttr: nil,
	})))

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
