package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"journeyd/internal/database/migrations"
	"journeyd/internal/journey"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Pool sizing for the shared *sql.DB. Connections are dialed lazily and
// handed out per operation; database/sql guarantees release on every exit
// path and is safe for concurrent acquisition.
const (
	maxOpenConns = 10
	minIdleConns = 2
)

// SQLiteStore implements journey.Store on SQLite.
type SQLiteStore struct {
	db    *sql.DB
	clock journey.Clock
	path  string
}

// NewSQLiteStore opens a pooled connection to the database at path.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string, clock journey.Clock) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStoreFromDB(db, clock, path), nil
}

// NewSQLiteStoreFromDB wraps an existing database handle. The caller is
// responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB, clock journey.Clock, path string) *SQLiteStore {
	if clock == nil {
		clock = journey.RealClock{}
	}
	return &SQLiteStore{db: db, clock: clock, path: path}
}

// OpenConnection opens and configures a pooled SQLite handle. The PRAGMAs
// ride in the DSN so every connection the pool dials is configured the same
// way, not just the first.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_loc=UTC", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Each new connection to :memory: is a fresh empty database, so the
		// pool must never grow past one.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(minIdleConns)
	}

	return db, nil
}

// DB exposes the underlying pool, for the snapshot writer and migrations.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Path returns the database file path (or ":memory:").
func (s *SQLiteStore) Path() string { return s.path }

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the connection pool.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadJourney reassembles the full document: metadata row plus all five
// collections. Returns journey.ErrNotFound if no metadata row exists.
func (s *SQLiteStore) LoadJourney(ctx context.Context, id string) (*journey.Document, error) {
	doc := &journey.Document{ID: id}

	row := s.db.QueryRowContext(ctx, `
		SELECT name, description, is_published, is_deleted, is_archived,
		       is_locked, is_read_only, is_editable, is_view_only,
		       created_at, updated_at
		FROM journeys WHERE id = ?`, id)
	err := row.Scan(
		&doc.Name, &doc.Description, &doc.IsPublished, &doc.IsDeleted,
		&doc.IsArchived, &doc.IsLocked, &doc.IsReadOnly, &doc.IsEditable,
		&doc.IsViewOnly, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, journey.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading journey metadata: %w", err)
	}

	if doc.Nodes, doc.Edges, err = s.LoadCanvas(ctx, id); err != nil {
		return nil, err
	}
	if doc.Goals, err = s.LoadGoals(ctx, id); err != nil {
		return nil, err
	}
	if doc.Milestones, err = s.LoadMilestones(ctx, id); err != nil {
		return nil, err
	}
	if doc.Reports, err = s.loadReports(ctx, id); err != nil {
		return nil, err
	}

	return doc, nil
}

// LoadCanvas returns the node and edge collections in insertion order.
func (s *SQLiteStore) LoadCanvas(ctx context.Context, id string) ([]journey.Node, []journey.Edge, error) {
	nodes, err := s.loadNodes(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	edges, err := s.loadEdges(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return nodes, edges, nil
}

func (s *SQLiteStore) loadNodes(ctx context.Context, id string) ([]journey.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, node_type, node_subtype, position_x, position_y, data, selected
		FROM journey_nodes WHERE journey_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("loading nodes: %w", err)
	}
	defer rows.Close()

	nodes := []journey.Node{}
	for rows.Next() {
		var n journey.Node
		var pos journey.Position
		var data []byte
		if err := rows.Scan(&n.ID, &n.Type, &n.Subtype, &pos.X, &pos.Y, &data, &n.Selected); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		n.Position = &pos
		n.Data = journey.DecodeOpaque(data)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *SQLiteStore) loadEdges(ctx context.Context, id string) ([]journey.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT edge_id, source_node, target_node, data, selected, edge_type, animated, style
		FROM journey_edges WHERE journey_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("loading edges: %w", err)
	}
	defer rows.Close()

	edges := []journey.Edge{}
	for rows.Next() {
		var e journey.Edge
		var data, style []byte
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &data, &e.Selected, &e.Type, &e.Animated, &style); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		e.Data = journey.DecodeOpaque(data)
		e.Style = journey.DecodeOpaque(style)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// LoadGoals returns the goal collection in insertion order.
func (s *SQLiteStore) LoadGoals(ctx context.Context, id string) ([]journey.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT goal_id, title, description, target_value, current_value, unit,
		       deadline, status, priority, category
		FROM journey_goals WHERE journey_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("loading goals: %w", err)
	}
	defer rows.Close()

	goals := []journey.Goal{}
	for rows.Next() {
		var g journey.Goal
		var deadline sql.NullTime
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.TargetValue, &g.CurrentValue,
			&g.Unit, &deadline, &g.Status, &g.Priority, &g.Category); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		if deadline.Valid {
			t := deadline.Time
			g.Deadline = &t
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// LoadMilestones returns the milestone collection in insertion order.
func (s *SQLiteStore) LoadMilestones(ctx context.Context, id string) ([]journey.Milestone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT milestone_id, title, description, target_date, status, progress,
		       dependencies, sort_order
		FROM journey_milestones WHERE journey_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("loading milestones: %w", err)
	}
	defer rows.Close()

	milestones := []journey.Milestone{}
	for rows.Next() {
		var m journey.Milestone
		var targetDate sql.NullTime
		var deps []byte
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &targetDate, &m.Status,
			&m.Progress, &deps, &m.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}
		if targetDate.Valid {
			t := targetDate.Time
			m.TargetDate = &t
		}
		m.Dependencies = decodeDependencies(deps)
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func (s *SQLiteStore) loadReports(ctx context.Context, id string) ([]journey.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT report_id, name, report_type, generated_at, data
		FROM journey_reports WHERE journey_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("loading reports: %w", err)
	}
	defer rows.Close()

	reports := []journey.Report{}
	for rows.Next() {
		var r journey.Report
		var data []byte
		if err := rows.Scan(&r.ID, &r.Name, &r.Type, &r.GeneratedAt, &data); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		r.Data = journey.DecodeOpaque(data)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// ListJourneys returns non-deleted journeys newest-first with their stats,
// plus the total count of matching journeys.
func (s *SQLiteStore) ListJourneys(ctx context.Context, limit, offset int) ([]journey.Summary, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT j.id, j.name, j.description, j.is_published, j.is_archived,
		       j.created_at, j.updated_at,
		       st.total_nodes, st.total_edges, st.total_goals, st.completed_goals,
		       st.total_milestones, st.completed_milestones, st.total_reports
		FROM journeys j
		JOIN journey_stats st ON st.journey_id = j.id
		WHERE j.is_deleted = 0
		ORDER BY j.updated_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing journeys: %w", err)
	}
	defer rows.Close()

	summaries := []journey.Summary{}
	for rows.Next() {
		var sm journey.Summary
		if err := rows.Scan(&sm.ID, &sm.Name, &sm.Description, &sm.IsPublished, &sm.IsArchived,
			&sm.CreatedAt, &sm.UpdatedAt,
			&sm.Stats.TotalNodes, &sm.Stats.TotalEdges, &sm.Stats.TotalGoals, &sm.Stats.CompletedGoals,
			&sm.Stats.TotalMilestones, &sm.Stats.CompletedMilestones, &sm.Stats.TotalReports); err != nil {
			return nil, 0, fmt.Errorf("scanning journey summary: %w", err)
		}
		summaries = append(summaries, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing journeys: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journeys WHERE is_deleted = 0`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting journeys: %w", err)
	}

	return summaries, total, nil
}

// GetStats returns the aggregate counts for one journey.
func (s *SQLiteStore) GetStats(ctx context.Context, id string) (*journey.Stats, error) {
	var st journey.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT total_nodes, total_edges, total_goals, completed_goals,
		       total_milestones, completed_milestones, total_reports
		FROM journey_stats WHERE journey_id = ?`, id).Scan(
		&st.TotalNodes, &st.TotalEdges, &st.TotalGoals, &st.CompletedGoals,
		&st.TotalMilestones, &st.CompletedMilestones, &st.TotalReports)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, journey.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading journey stats: %w", err)
	}
	return &st, nil
}

// DeleteJourney soft-deletes by default. A hard delete removes the metadata
// row; foreign keys cascade removal of all child records.
func (s *SQLiteStore) DeleteJourney(ctx context.Context, id string, hard bool) error {
	var res sql.Result
	var err error
	if hard {
		res, err = s.db.ExecContext(ctx, `DELETE FROM journeys WHERE id = ?`, id)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE journeys SET is_deleted = 1, updated_at = ? WHERE id = ?`,
			s.clock.Now(), id)
	}
	if err != nil {
		return &journey.PersistenceError{Op: "deleting journey", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &journey.PersistenceError{Op: "deleting journey", Err: err}
	}
	if affected == 0 {
		return journey.ErrNotFound
	}
	return nil
}

func decodeDependencies(b []byte) []string {
	deps := []string{}
	if len(b) == 0 {
		return deps
	}
	// Tolerant like the opaque payload decode: a corrupt list degrades to
	// empty rather than failing the load.
	if err := json.Unmarshal(b, &deps); err != nil || deps == nil {
		return []string{}
	}
	return deps
}

// encodeOpaque renders an opaque payload for storage. Null (the zero Value,
// e.g. an absent wire field) is stored as an empty object.
func encodeOpaque(v journey.Value) (string, error) {
	if v.Kind() == journey.KindNull {
		return "{}", nil
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeDependencies(deps []string) (string, error) {
	if deps == nil {
		deps = []string{}
	}
	b, err := json.Marshal(deps)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Compile-time check that SQLiteStore implements journey.Store.
var _ journey.Store = (*SQLiteStore)(nil)
