package journey

import (
	"context"
	"fmt"
)

// Service is the orchestration layer over the Store: it validates identity
// and document contents before any database round-trip, delegates the
// transactional reconciliation to the store, and writes the best-effort
// audit snapshot after a successful full save.
type Service struct {
	store    Store
	archiver Archiver
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

func NewService(store Store, archiver Archiver, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		store:    store,
		archiver: archiver,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// Create mints a new journey id and persists the document under it.
// Zero timestamps are stamped with the current time.
func (s *Service) Create(ctx context.Context, doc *Document) (string, error) {
	now := s.clock.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}
	if err := validateDocument(doc); err != nil {
		return "", err
	}

	id := s.idgen.New()
	if err := s.store.CreateJourney(ctx, id, doc); err != nil {
		return "", fmt.Errorf("creating journey: %w", err)
	}
	doc.ID = id

	s.logger.Info("journey created", "journey_id", id)
	return id, nil
}

// Save reconciles the complete document — metadata and all five collections —
// then records an audit snapshot. Snapshot failure is logged and swallowed:
// the audit trail is a convenience, never a correctness dependency.
func (s *Service) Save(ctx context.Context, id string, doc *Document) error {
	jid, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}
	now := s.clock.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	if err := s.store.SaveJourney(ctx, jid, doc); err != nil {
		return fmt.Errorf("saving journey: %w", err)
	}

	capturedAt := s.clock.Now()
	if err := s.archiver.Record(ctx, jid, capturedAt, doc); err != nil {
		s.logger.Error("failed to write journey snapshot", "journey_id", jid, "error", err)
	}

	s.logger.Info("journey saved", "journey_id", jid)
	return nil
}

// SaveCanvas reconciles nodes and edges only. The other three collections
// and the journey metadata row are left untouched.
func (s *Service) SaveCanvas(ctx context.Context, id string, nodes []Node, edges []Edge) error {
	jid, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := s.store.SaveCanvas(ctx, jid, nodes, edges); err != nil {
		return fmt.Errorf("saving canvas: %w", err)
	}
	s.logger.Info("canvas saved", "journey_id", jid, "nodes", len(nodes), "edges", len(edges))
	return nil
}

// SaveGoals reconciles the goal collection only.
func (s *Service) SaveGoals(ctx context.Context, id string, goals []Goal) error {
	jid, err := ParseID(id)
	if err != nil {
		return err
	}
	normalizeGoals(goals)
	if err := s.store.SaveGoals(ctx, jid, goals); err != nil {
		return fmt.Errorf("saving goals: %w", err)
	}
	s.logger.Info("goals saved", "journey_id", jid, "goals", len(goals))
	return nil
}

// SaveMilestones reconciles the milestone collection only.
func (s *Service) SaveMilestones(ctx context.Context, id string, milestones []Milestone) error {
	jid, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := validateMilestones(milestones); err != nil {
		return err
	}
	if err := s.store.SaveMilestones(ctx, jid, milestones); err != nil {
		return fmt.Errorf("saving milestones: %w", err)
	}
	s.logger.Info("milestones saved", "journey_id", jid, "milestones", len(milestones))
	return nil
}

// Load reassembles the full document.
func (s *Service) Load(ctx context.Context, id string) (*Document, error) {
	jid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.LoadJourney(ctx, jid)
	if err != nil {
		return nil, fmt.Errorf("loading journey: %w", err)
	}
	return doc, nil
}

// LoadCanvas returns the node and edge collections.
func (s *Service) LoadCanvas(ctx context.Context, id string) ([]Node, []Edge, error) {
	jid, err := ParseID(id)
	if err != nil {
		return nil, nil, err
	}
	return s.store.LoadCanvas(ctx, jid)
}

// LoadGoals returns the goal collection.
func (s *Service) LoadGoals(ctx context.Context, id string) ([]Goal, error) {
	jid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.store.LoadGoals(ctx, jid)
}

// LoadMilestones returns the milestone collection.
func (s *Service) LoadMilestones(ctx context.Context, id string) ([]Milestone, error) {
	jid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.store.LoadMilestones(ctx, jid)
}

// List returns non-deleted journeys newest-first. The limit is clamped to
// 1..100 (default 50) and negative offsets are treated as zero.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Summary, int, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListJourneys(ctx, limit, offset)
}

// Stats returns the aggregate counts for one journey.
func (s *Service) Stats(ctx context.Context, id string) (*Stats, error) {
	jid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.store.GetStats(ctx, jid)
}

// Delete removes a journey: soft by default, hard when requested (cascading
// removal of all child records).
func (s *Service) Delete(ctx context.Context, id string, hard bool) error {
	jid, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteJourney(ctx, jid, hard); err != nil {
		return fmt.Errorf("deleting journey: %w", err)
	}
	s.logger.Info("journey deleted", "journey_id", jid, "hard", hard)
	return nil
}

// MetadataPatch carries the present-only metadata fields of an update
// request. Nil means "leave unchanged".
type MetadataPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublished *bool   `json:"isPublished"`
	IsArchived  *bool   `json:"isArchived"`
	IsLocked    *bool   `json:"isLocked"`
	IsReadOnly  *bool   `json:"isReadOnly"`
	IsEditable  *bool   `json:"isEditable"`
	IsViewOnly  *bool   `json:"isViewOnly"`
}

// UpdateMetadata loads the journey, applies the patch, and saves the result
// (full-overwrite semantics underneath, like any other save).
func (s *Service) UpdateMetadata(ctx context.Context, id string, patch MetadataPatch) (*Document, error) {
	doc, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		doc.Name = *patch.Name
	}
	if patch.Description != nil {
		doc.Description = *patch.Description
	}
	if patch.IsPublished != nil {
		doc.IsPublished = *patch.IsPublished
	}
	if patch.IsArchived != nil {
		doc.IsArchived = *patch.IsArchived
	}
	if patch.IsLocked != nil {
		doc.IsLocked = *patch.IsLocked
	}
	if patch.IsReadOnly != nil {
		doc.IsReadOnly = *patch.IsReadOnly
	}
	if patch.IsViewOnly != nil {
		doc.IsViewOnly = *patch.IsViewOnly
	}
	if patch.IsEditable != nil {
		doc.IsEditable = *patch.IsEditable
	}
	doc.UpdatedAt = s.clock.Now()

	if err := s.Save(ctx, id, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Duplicate copies an existing journey under a fresh id. Flags reset to the
// new-journey defaults and reports are not carried over.
func (s *Service) Duplicate(ctx context.Context, id, newName string) (*Document, error) {
	src, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if newName == "" {
		newName = src.Name + " (Copy)"
	}
	now := s.clock.Now()
	dup := NewDocument(newName, src.Description, now)
	dup.Nodes = src.Nodes
	dup.Edges = src.Edges
	dup.Goals = src.Goals
	dup.Milestones = src.Milestones

	if _, err := s.Create(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// validateDocument checks field ranges and normalizes enum fields that were
// absent from the wire (an absent field never passes through the variant
// decoder, so it surfaces here as the empty string).
func validateDocument(doc *Document) error {
	normalizeGoals(doc.Goals)
	if err := validateMilestones(doc.Milestones); err != nil {
		return err
	}
	for i := range doc.Reports {
		doc.Reports[i].Type = NormalizeReportType(string(doc.Reports[i].Type))
	}
	return nil
}

func normalizeGoals(goals []Goal) {
	for i := range goals {
		goals[i].Status = NormalizeGoalStatus(string(goals[i].Status))
		goals[i].Priority = NormalizePriority(string(goals[i].Priority))
	}
}

func validateMilestones(milestones []Milestone) error {
	for i := range milestones {
		m := &milestones[i]
		if m.Progress < 0 || m.Progress > 100 {
			return &ValidationError{
				Field:  "milestone progress",
				Reason: fmt.Sprintf("%d is outside 0..100 (milestone %q)", m.Progress, m.ID),
			}
		}
		m.Status = NormalizeMilestoneStatus(string(m.Status))
	}
	return nil
}
