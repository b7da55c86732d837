package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"journeyd/internal/journey"
)

// SnapshotWriter records post-save audit snapshots in the same database the
// documents live in. Each record is an append-only row holding the full
// document as JSON; nothing reads them back on the hot path.
//
// Writes run on the shared pool outside any save transaction, so a snapshot
// failure cannot roll back a committed save.
type SnapshotWriter struct {
	db *sql.DB
}

// NewSnapshotWriter builds a writer over the store's pool.
func NewSnapshotWriter(store *SQLiteStore) *SnapshotWriter {
	return &SnapshotWriter{db: store.DB()}
}

// Record appends one snapshot row.
func (w *SnapshotWriter) Record(ctx context.Context, id string, capturedAt time.Time, doc *journey.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding snapshot for journey %s: %w", id, err)
	}
	_, err = w.db.ExecContext(ctx, `
		INSERT INTO journey_snapshots (journey_id, captured_at, document)
		VALUES (?, ?, ?)`, id, capturedAt, string(body))
	if err != nil {
		return fmt.Errorf("recording snapshot for journey %s: %w", id, err)
	}
	return nil
}

var _ journey.Archiver = (*SnapshotWriter)(nil)
