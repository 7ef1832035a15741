// Package storage opens the interview store the web server persists to, for use by offline commands.
package storage

import (
	"context"
	"github.com/badgerinator/businessProcessAnalysis/internal/config"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/logging"
	"github.com/badgerinator/businessProcessAnalysis/internal/repositories"
	"github.com/badgerinator/businessProcessAnalysis/internal/sqlite"
	"github.com/badgerinator/businessProcessAnalysis/internal/state"
	"io"
	"log/slog"
	"os"
)

// Logger logs warnings and errors to w so that command output stays clean.
func Logger(w io.Writer) *slog.Logger {
	level := logging.ParseLevel(os.Getenv("INTERVIEWKIT_LOG_LEVEL"))
	if level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource:   false,
		Level:       level,
		ReplaceAttr: nil,
	})))
}

// Open restores the store from the configured database and snapshot slot. The returned function closes the database.
func Open(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) (
	*state.Store, func(), error) {
	cfg, err := config.Load(lookupEnv)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}
	db, err := sqlite.NewDatabase(ctx, cfg.SQLiteURL, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}
	snapshots := repositories.NewSnapshotRepository(db, logger)
	store := state.New(ctx, logger, state.WithPersister(snapshots, cfg.Slot))
	closeDB := func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(closeErr))
		}
	}
	return store, closeDB, nil
}
