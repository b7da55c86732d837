package journey_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"journeyd/internal/journey"
	"journeyd/internal/testutil"
)

type fixture struct {
	svc      *journey.Service
	clock    *testutil.StubClock
	archiver *testutil.RecordingArchiver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := testutil.FixedClock()
	store := testutil.NewTestStore(t, clock)
	archiver := testutil.NewRecordingArchiver()
	svc := journey.NewService(store, archiver, journey.NopLogger{}, clock, testutil.NewStubIDGenerator())
	return &fixture{svc: svc, clock: clock, archiver: archiver}
}

func sampleDocument(now time.Time) *journey.Document {
	doc := journey.NewDocument("Launch Plan", "Q2 product launch", now)
	doc.Nodes = []journey.Node{
		{ID: "n1", Type: "task", Subtype: "research", Position: &journey.Position{X: 10, Y: 20}},
		{ID: "n2", Type: "decision"},
	}
	doc.Edges = []journey.Edge{
		{ID: "e1", Source: "n1", Target: "n2", Type: "smooth", Animated: true},
	}
	doc.Goals = []journey.Goal{
		{ID: "g1", Title: "Revenue", TargetValue: 1000, CurrentValue: 250,
			Status: journey.GoalInProgress, Priority: journey.PriorityHigh},
	}
	doc.Milestones = []journey.Milestone{
		{ID: "m1", Title: "Beta", Status: journey.MilestonePending, Progress: 40,
			Dependencies: []string{"m0"}, SortOrder: 1},
	}
	doc.Reports = []journey.Report{
		{ID: "r1", Name: "Week 1", Type: journey.ReportProgress, GeneratedAt: now},
	}
	return doc
}

func TestService_Create(t *testing.T) {
	t.Run("persists the document under a fresh id", func(t *testing.T) {
		f := newFixture(t)
		doc := sampleDocument(f.clock.Now())

		id, err := f.svc.Create(context.Background(), doc)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if id == "" {
			t.Fatal("Create() returned empty id")
		}
		if doc.ID != id {
			t.Errorf("doc.ID = %q, want %q", doc.ID, id)
		}

		loaded, err := f.svc.Load(context.Background(), id)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if loaded.Name != "Launch Plan" {
			t.Errorf("loaded.Name = %q", loaded.Name)
		}
		if len(loaded.Nodes) != 2 || len(loaded.Edges) != 1 {
			t.Errorf("loaded canvas = %d nodes, %d edges; want 2, 1", len(loaded.Nodes), len(loaded.Edges))
		}
	})

	t.Run("stamps zero timestamps", func(t *testing.T) {
		f := newFixture(t)
		doc := &journey.Document{Name: "Bare", Description: "x", IsEditable: true}

		id, err := f.svc.Create(context.Background(), doc)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		loaded, err := f.svc.Load(context.Background(), id)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !loaded.CreatedAt.Equal(f.clock.Now()) {
			t.Errorf("CreatedAt = %v, want %v", loaded.CreatedAt, f.clock.Now())
		}
		if !loaded.UpdatedAt.Equal(f.clock.Now()) {
			t.Errorf("UpdatedAt = %v, want %v", loaded.UpdatedAt, f.clock.Now())
		}
	})
}

func TestService_Save(t *testing.T) {
	t.Run("rejects a malformed id before touching the store", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Save(context.Background(), "not-a-uuid", sampleDocument(f.clock.Now()))

		var identityErr *journey.IdentityError
		if !errors.As(err, &identityErr) {
			t.Errorf("Save() error = %v, want *IdentityError", err)
		}
		if len(f.archiver.Snapshots()) != 0 {
			t.Error("snapshot recorded for rejected save")
		}
	})

	t.Run("rejects out-of-range milestone progress", func(t *testing.T) {
		f := newFixture(t)
		doc := sampleDocument(f.clock.Now())
		id, err := f.svc.Create(context.Background(), doc)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		doc.Milestones[0].Progress = 150
		err = f.svc.Save(context.Background(), id, doc)

		var validationErr *journey.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("Save() error = %v, want *ValidationError", err)
		}
	})

	t.Run("records a snapshot after a successful save", func(t *testing.T) {
		f := newFixture(t)
		doc := sampleDocument(f.clock.Now())
		id, err := f.svc.Create(context.Background(), doc)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if err := f.svc.Save(context.Background(), id, doc); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		snaps := f.archiver.Snapshots()
		if len(snaps) != 1 {
			t.Fatalf("snapshots = %d, want 1", len(snaps))
		}
		if snaps[0].JourneyID != id {
			t.Errorf("snapshot journey id = %q, want %q", snaps[0].JourneyID, id)
		}
	})

	t.Run("snapshot failure does not fail the save", func(t *testing.T) {
		f := newFixture(t)
		doc := sampleDocument(f.clock.Now())
		id, err := f.svc.Create(context.Background(), doc)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		f.archiver.Fail = true
		if err := f.svc.Save(context.Background(), id, doc); err != nil {
			t.Fatalf("Save() error = %v, want nil despite archiver failure", err)
		}

		loaded, err := f.svc.Load(context.Background(), id)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if loaded.Name != doc.Name {
			t.Error("save did not persist despite returning nil")
		}
	})
}

func TestService_PartialSaves(t *testing.T) {
	t.Run("canvas save leaves goals and metadata untouched", func(t *testing.T) {
		f := newFixture(t)
		doc := sampleDocument(f.clock.Now())
		id, err := f.svc.Create(context.Background(), doc)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		createdUpdatedAt := doc.UpdatedAt

		f.clock.Advance(time.Hour)
		nodes := []journey.Node{{ID: "n9", Type: "task"}}
		if err := f.svc.SaveCanvas(context.Background(), id, nodes, nil); err != nil {
			t.Fatalf("SaveCanvas() error = %v", err)
		}

		loaded, err := f.svc.Load(context.Background(), id)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(loaded.Nodes) != 1 || loaded.Nodes[0].ID != "n9" {
			t.Errorf("nodes after canvas save = %+v", loaded.Nodes)
		}
		if len(loaded.Edges) != 0 {
			t.Errorf("edges = %d, want 0 (omitted means deleted)", len(loaded.Edges))
		}
		if len(loaded.Goals) != 1 {
			t.Errorf("goals = %d, want 1 (untouched)", len(loaded.Goals))
		}
		if !loaded.UpdatedAt.Equal(createdUpdatedAt) {
			t.Errorf("metadata UpdatedAt changed by canvas save: %v", loaded.UpdatedAt)
		}
	})

	t.Run("goals save normalizes unknown enum members", func(t *testing.T) {
		f := newFixture(t)
		doc := sampleDocument(f.clock.Now())
		id, err := f.svc.Create(context.Background(), doc)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		goals := []journey.Goal{{ID: "g2", Title: "New", Status: "whatever", Priority: ""}}
		if err := f.svc.SaveGoals(context.Background(), id, goals); err != nil {
			t.Fatalf("SaveGoals() error = %v", err)
		}

		loaded, err := f.svc.LoadGoals(context.Background(), id)
		if err != nil {
			t.Fatalf("LoadGoals() error = %v", err)
		}
		if len(loaded) != 1 {
			t.Fatalf("goals = %d, want 1", len(loaded))
		}
		if loaded[0].Status != journey.GoalActive {
			t.Errorf("Status = %q, want %q", loaded[0].Status, journey.GoalActive)
		}
		if loaded[0].Priority != journey.PriorityMedium {
			t.Errorf("Priority = %q, want %q", loaded[0].Priority, journey.PriorityMedium)
		}
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("soft delete hides from listing but keeps the document", func(t *testing.T) {
		f := newFixture(t)
		id, err := f.svc.Create(context.Background(), sampleDocument(f.clock.Now()))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if err := f.svc.Delete(context.Background(), id, false); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		summaries, total, err := f.svc.List(context.Background(), 10, 0)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(summaries) != 0 || total != 0 {
			t.Errorf("List() after soft delete = %d rows, total %d", len(summaries), total)
		}

		if _, err := f.svc.Load(context.Background(), id); err != nil {
			t.Errorf("Load() after soft delete error = %v, want document retained", err)
		}
	})

	t.Run("hard delete removes everything", func(t *testing.T) {
		f := newFixture(t)
		id, err := f.svc.Create(context.Background(), sampleDocument(f.clock.Now()))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if err := f.svc.Delete(context.Background(), id, true); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		if _, err := f.svc.Load(context.Background(), id); !errors.Is(err, journey.ErrNotFound) {
			t.Errorf("Load() after hard delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("deleting an unknown journey is ErrNotFound", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Delete(context.Background(), "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11", false)
		if !errors.Is(err, journey.ErrNotFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})
}

func TestService_UpdateMetadata(t *testing.T) {
	f := newFixture(t)
	id, err := f.svc.Create(context.Background(), sampleDocument(f.clock.Now()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	f.clock.Advance(time.Minute)
	name := "Renamed"
	published := true
	doc, err := f.svc.UpdateMetadata(context.Background(), id, journey.MetadataPatch{
		Name:        &name,
		IsPublished: &published,
	})
	if err != nil {
		t.Fatalf("UpdateMetadata() error = %v", err)
	}

	if doc.Name != "Renamed" {
		t.Errorf("Name = %q", doc.Name)
	}
	if !doc.IsPublished {
		t.Error("IsPublished not applied")
	}
	if doc.Description != "Q2 product launch" {
		t.Errorf("Description changed by patch: %q", doc.Description)
	}
	if !doc.UpdatedAt.Equal(f.clock.Now()) {
		t.Errorf("UpdatedAt = %v, want %v", doc.UpdatedAt, f.clock.Now())
	}

	// Patched collections survive in the store too.
	loaded, err := f.svc.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Name != "Renamed" || len(loaded.Nodes) != 2 {
		t.Errorf("persisted state = name %q, %d nodes", loaded.Name, len(loaded.Nodes))
	}
}

func TestService_Duplicate(t *testing.T) {
	f := newFixture(t)
	id, err := f.svc.Create(context.Background(), sampleDocument(f.clock.Now()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup, err := f.svc.Duplicate(context.Background(), id, "")
	if err != nil {
		t.Fatalf("Duplicate() error = %v", err)
	}

	if dup.ID == id {
		t.Error("duplicate reused the source id")
	}
	if dup.Name != "Launch Plan (Copy)" {
		t.Errorf("Name = %q", dup.Name)
	}

	loaded, err := f.svc.Load(context.Background(), dup.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Nodes) != 2 || len(loaded.Goals) != 1 || len(loaded.Milestones) != 1 {
		t.Errorf("duplicate collections = %d nodes, %d goals, %d milestones",
			len(loaded.Nodes), len(loaded.Goals), len(loaded.Milestones))
	}
	if len(loaded.Reports) != 0 {
		t.Errorf("reports = %d, want 0 (reports are not carried over)", len(loaded.Reports))
	}
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		doc := journey.NewDocument("Journey", "", f.clock.Now())
		if _, err := f.svc.Create(ctx, doc); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		f.clock.Advance(time.Minute)
	}

	summaries, total, err := f.svc.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(summaries) != 2 {
		t.Fatalf("page size = %d, want 2", len(summaries))
	}
	if summaries[0].UpdatedAt.Before(summaries[1].UpdatedAt) {
		t.Error("listing is not newest-first")
	}
}
