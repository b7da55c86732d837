package journey

import (
	"context"
	"time"
)

// Archiver records immutable audit snapshots of saved documents. Record is
// called only after the primary save has committed, on an independent
// connection or backend, so its failure can never roll back the save. The
// service logs and swallows archiver errors.
type Archiver interface {
	Record(ctx context.Context, id string, capturedAt time.Time, doc *Document) error
}

// NopArchiver discards snapshots. Used when auditing is disabled.
type NopArchiver struct{}

func (NopArchiver) Record(context.Context, string, time.Time, *Document) error { return nil }
