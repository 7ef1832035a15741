package main

import (
	"context"
	"encoding/json"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/repositories"
	"github.com/badgerinator/businessProcessAnalysis/internal/sqlite"
	"github.com/badgerinator/businessProcessAnalysis/internal/state"
	"github.com/badgerinator/businessProcessAnalysis/internal/testhelpers"
	"log/slog"
	"os"
	"time"
)

// migratetest migrates a copy of a production database and checks that its snapshot still decodes.
func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("INTERVIEWKIT_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "INTERVIEWKIT_SQLITE_URL not set")
		os.Exit(1)
	}
	slot, ok := os.LookupEnv("INTERVIEWKIT_SLOT")
	if !ok {
		slot = "interview-platform-storage"
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	snapshots := repositories.NewSnapshotRepository(db, logger)
	payload, found, err := snapshots.Load(ctx, slot)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error loading snapshot", errors.SlogError(err))
		os.Exit(1)
	}
	if !found {
		logger.LogAttrs(ctx, slog.LevelError, "no snapshot found, something is likely wrong", slog.String("slot", slot))
		os.Exit(1)
	}
	var st state.State
	if err = json.Unmarshal(payload, &st); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "snapshot does not decode", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "snapshot contents",
		slog.Int("questionnaires", len(st.Questionnaires)), slog.Int("interviews", len(st.Interviews)))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	if err = db.Close(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(err))
		os.Exit(1)
	}
	os.Exit(0)
}
