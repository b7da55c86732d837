package journey

import "context"

// Store is the persistence interface for journeys. Every Save* method is
// atomic: it reconciles the given collections against the stored state in a
// single transaction (upsert incoming records by natural key, then prune the
// records the client dropped), so a failure leaves prior state unchanged.
// The five collections are independent synchronization units — a partial
// save touches only the collections it names.
type Store interface {
	// CreateJourney inserts a new journey (metadata plus any supplied child
	// records) under the given id.
	CreateJourney(ctx context.Context, id string, doc *Document) error

	// SaveJourney reconciles the full document: metadata row plus all five
	// collections.
	SaveJourney(ctx context.Context, id string, doc *Document) error

	// SaveCanvas reconciles nodes and edges only. Journey metadata and the
	// other collections are untouched.
	SaveCanvas(ctx context.Context, id string, nodes []Node, edges []Edge) error

	// SaveGoals reconciles the goal collection only.
	SaveGoals(ctx context.Context, id string, goals []Goal) error

	// SaveMilestones reconciles the milestone collection only.
	SaveMilestones(ctx context.Context, id string, milestones []Milestone) error

	// LoadJourney reassembles the full document. Returns ErrNotFound if no
	// metadata row exists.
	LoadJourney(ctx context.Context, id string) (*Document, error)

	// LoadCanvas returns the node and edge collections.
	LoadCanvas(ctx context.Context, id string) ([]Node, []Edge, error)

	// LoadGoals returns the goal collection.
	LoadGoals(ctx context.Context, id string) ([]Goal, error)

	// LoadMilestones returns the milestone collection.
	LoadMilestones(ctx context.Context, id string) ([]Milestone, error)

	// ListJourneys returns non-deleted journeys newest-first with their
	// aggregate counts, plus the total number of matching journeys.
	ListJourneys(ctx context.Context, limit, offset int) ([]Summary, int, error)

	// GetStats returns the aggregate counts for one journey.
	GetStats(ctx context.Context, id string) (*Stats, error)

	// DeleteJourney soft-deletes by default (flips is_deleted); hard delete
	// removes the metadata row and cascades over all child records.
	DeleteJourney(ctx context.Context, id string, hard bool) error

	// Close closes the underlying connection pool.
	Close() error
}
