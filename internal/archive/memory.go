package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"journeyd/internal/journey"
)

// Snapshot is one recorded document state.
type Snapshot struct {
	JourneyID  string
	CapturedAt time.Time
	Document   []byte
}

// MemoryArchiver keeps snapshots in memory, which is useful for testing.
// This implementation is safe for concurrent use.
type MemoryArchiver struct {
	mu        sync.RWMutex
	snapshots map[string][]Snapshot // journeyID -> snapshots in record order
}

// NewMemoryArchiver creates a new in-memory archiver.
func NewMemoryArchiver() *MemoryArchiver {
	return &MemoryArchiver{snapshots: make(map[string][]Snapshot)}
}

// Record appends one snapshot.
func (a *MemoryArchiver) Record(ctx context.Context, id string, capturedAt time.Time, doc *journey.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding snapshot for journey %s: %w", id, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshots[id] = append(a.snapshots[id], Snapshot{
		JourneyID:  id,
		CapturedAt: capturedAt,
		Document:   body,
	})
	return nil
}

// Snapshots returns the recorded snapshots for a journey in record order.
func (a *MemoryArchiver) Snapshots(id string) []Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Snapshot, len(a.snapshots[id]))
	copy(out, a.snapshots[id])
	return out
}

// Compile-time check that MemoryArchiver implements journey.Archiver
var _ journey.Archiver = (*MemoryArchiver)(nil)
