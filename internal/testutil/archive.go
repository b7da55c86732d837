package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"journeyd/internal/journey"
)

// RecordedSnapshot is one Record call captured by RecordingArchiver.
type RecordedSnapshot struct {
	JourneyID  string
	CapturedAt time.Time
	Document   *journey.Document
}

// RecordingArchiver captures Record calls for assertions. When Fail is set,
// every Record returns an error, which lets tests exercise the best-effort
// snapshot path.
type RecordingArchiver struct {
	mu        sync.Mutex
	Fail      bool
	snapshots []RecordedSnapshot
}

func NewRecordingArchiver() *RecordingArchiver {
	return &RecordingArchiver{}
}

func (a *RecordingArchiver) Record(_ context.Context, id string, capturedAt time.Time, doc *journey.Document) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Fail {
		return errors.New("archiver unavailable")
	}
	a.snapshots = append(a.snapshots, RecordedSnapshot{
		JourneyID:  id,
		CapturedAt: capturedAt,
		Document:   doc,
	})
	return nil
}

// Snapshots returns the captured Record calls in order.
func (a *RecordingArchiver) Snapshots() []RecordedSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]RecordedSnapshot, len(a.snapshots))
	copy(out, a.snapshots)
	return out
}
