package repositories

import (
	"context"
	"database/sql"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/sqlite"
	"log/slog"
	"time"
)

// SnapshotRepository keeps serialized application state in named slots.
type SnapshotRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewSnapshotRepository(db *sqlite.Database, logger *slog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     db,
		logger: logger.With("source", "snapshot_repository"),
	}
}

// Load returns the payload saved under slot. The boolean is false when the slot is empty.
func (r *SnapshotRepository) Load(ctx context.Context, slot string) ([]byte, bool, error) {
	var payload []byte
	stmt := `SELECT payload FROM snapshots WHERE slot = ?`
	err := r.db.ReadOnly.QueryRowContext(ctx, stmt, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "query snapshot", slog.String("slot", slot))
	}
	return payload, true, nil
}

// Save replaces the payload under slot.
func (r *SnapshotRepository) Save(ctx context.Context, slot string, payload []byte) error {
	stmt := `INSERT INTO snapshots (slot, payload, saved_at)
VALUES (:slot, :payload, :saved_at)
ON CONFLICT (slot) DO UPDATE SET payload  = excluded.payload,
                                 saved_at = excluded.saved_at,
                                 revision = revision + 1`
	_, err := r.db.ReadWrite.ExecContext(ctx, stmt,
		sql.Named("slot", slot),
		sql.Named("payload", payload),
		sql.Named("saved_at", time.Now().UTC().Format(time.RFC3339Nano)),
	)
	if err != nil {
		return errors.Wrap(err, "upsert snapshot", slog.String("slot", slot))
	}
	return nil
}

// SnapshotInfo describes a saved slot without its payload.
type SnapshotInfo struct {
	Slot     string
	Size     int
	SavedAt  time.Time
	Revision int
}

// Info returns the metadata of a slot.
func (r *SnapshotRepository) Info(ctx context.Context, slot string) (SnapshotInfo, bool, error) {
	var (
		info    SnapshotInfo
		savedAt string
	)
	stmt := `SELECT slot, length(payload), saved_at, revision FROM snapshots WHERE slot = ?`
	err := r.db.ReadOnly.QueryRowContext(ctx, stmt, slot).Scan(&info.Slot, &info.Size, &savedAt, &info.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotInfo{}, false, nil
	}
	if err != nil {
		return SnapshotInfo{}, false, errors.Wrap(err, "query snapshot info", slog.String("slot", slot))
	}
	if info.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
		return SnapshotInfo{}, false, errors.Wrap(err, "parse saved_at", slog.String("saved_at", savedAt))
	}
	return info, true, nil
}
