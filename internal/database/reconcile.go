package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"journeyd/internal/journey"
)

// pruneSentinel stands in for the local-id set when a collection arrives
// empty. NOT IN (?) needs at least one placeholder, and NUL can never appear
// in a real id, so the prune deletes every stored record.
const pruneSentinel = "\x00"

// CreateJourney inserts the metadata row and any child records the document
// carries, all in one transaction. The id must not already exist.
func (s *SQLiteStore) CreateJourney(ctx context.Context, id string, doc *journey.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &journey.PersistenceError{Op: "creating journey", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO journeys (id, name, description, is_published, is_deleted,
			is_archived, is_locked, is_read_only, is_editable, is_view_only,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, doc.Name, doc.Description, doc.IsPublished, doc.IsDeleted,
		doc.IsArchived, doc.IsLocked, doc.IsReadOnly, doc.IsEditable,
		doc.IsViewOnly, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return &journey.PersistenceError{Op: "creating journey", Err: err}
	}

	if err := upsertAllCollections(ctx, tx, id, doc, doc.UpdatedAt); err != nil {
		return &journey.PersistenceError{Op: "creating journey", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &journey.PersistenceError{Op: "creating journey", Err: err}
	}
	return nil
}

// SaveJourney reconciles the full document. The metadata row is updated in
// place (created_at is immutable), then each collection is synchronized:
// incoming records are upserted by natural key and anything the client no
// longer sends is pruned. One transaction covers all of it.
func (s *SQLiteStore) SaveJourney(ctx context.Context, id string, doc *journey.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &journey.PersistenceError{Op: "saving journey", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO journeys (id, name, description, is_published, is_deleted,
			is_archived, is_locked, is_read_only, is_editable, is_view_only,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			is_published = excluded.is_published,
			is_deleted = excluded.is_deleted,
			is_archived = excluded.is_archived,
			is_locked = excluded.is_locked,
			is_read_only = excluded.is_read_only,
			is_editable = excluded.is_editable,
			is_view_only = excluded.is_view_only,
			updated_at = excluded.updated_at`,
		id, doc.Name, doc.Description, doc.IsPublished, doc.IsDeleted,
		doc.IsArchived, doc.IsLocked, doc.IsReadOnly, doc.IsEditable,
		doc.IsViewOnly, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return &journey.PersistenceError{Op: "saving journey", Err: err}
	}

	if err := upsertAllCollections(ctx, tx, id, doc, doc.UpdatedAt); err != nil {
		return &journey.PersistenceError{Op: "saving journey", Err: err}
	}
	if err := pruneAllCollections(ctx, tx, id, doc); err != nil {
		return &journey.PersistenceError{Op: "saving journey", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &journey.PersistenceError{Op: "saving journey", Err: err}
	}
	return nil
}

// SaveCanvas reconciles nodes and edges only. Metadata and the other
// collections are untouched.
func (s *SQLiteStore) SaveCanvas(ctx context.Context, id string, nodes []journey.Node, edges []journey.Edge) error {
	now := s.clock.Now()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := syncNodes(ctx, tx, id, nodes, now); err != nil {
			return err
		}
		return syncEdges(ctx, tx, id, edges, now)
	})
	if err != nil {
		return &journey.PersistenceError{Op: "saving canvas", Err: err}
	}
	return nil
}

// SaveGoals reconciles the goal collection only.
func (s *SQLiteStore) SaveGoals(ctx context.Context, id string, goals []journey.Goal) error {
	now := s.clock.Now()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return syncGoals(ctx, tx, id, goals, now)
	})
	if err != nil {
		return &journey.PersistenceError{Op: "saving goals", Err: err}
	}
	return nil
}

// SaveMilestones reconciles the milestone collection only.
func (s *SQLiteStore) SaveMilestones(ctx context.Context, id string, milestones []journey.Milestone) error {
	now := s.clock.Now()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return syncMilestones(ctx, tx, id, milestones, now)
	})
	if err != nil {
		return &journey.PersistenceError{Op: "saving milestones", Err: err}
	}
	return nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertAllCollections(ctx context.Context, tx *sql.Tx, id string, doc *journey.Document, stamp time.Time) error {
	if err := upsertNodes(ctx, tx, id, doc.Nodes, stamp); err != nil {
		return err
	}
	if err := upsertEdges(ctx, tx, id, doc.Edges, stamp); err != nil {
		return err
	}
	if err := upsertGoals(ctx, tx, id, doc.Goals, stamp); err != nil {
		return err
	}
	if err := upsertMilestones(ctx, tx, id, doc.Milestones, stamp); err != nil {
		return err
	}
	return upsertReports(ctx, tx, id, doc.Reports, stamp)
}

func pruneAllCollections(ctx context.Context, tx *sql.Tx, id string, doc *journey.Document) error {
	if err := pruneStale(ctx, tx, "journey_nodes", "node_id", id, nodeIDs(doc.Nodes)); err != nil {
		return err
	}
	if err := pruneStale(ctx, tx, "journey_edges", "edge_id", id, edgeIDs(doc.Edges)); err != nil {
		return err
	}
	if err := pruneStale(ctx, tx, "journey_goals", "goal_id", id, goalIDs(doc.Goals)); err != nil {
		return err
	}
	if err := pruneStale(ctx, tx, "journey_milestones", "milestone_id", id, milestoneIDs(doc.Milestones)); err != nil {
		return err
	}
	return pruneStale(ctx, tx, "journey_reports", "report_id", id, reportIDs(doc.Reports))
}

func syncNodes(ctx context.Context, tx *sql.Tx, id string, nodes []journey.Node, stamp time.Time) error {
	if err := upsertNodes(ctx, tx, id, nodes, stamp); err != nil {
		return err
	}
	return pruneStale(ctx, tx, "journey_nodes", "node_id", id, nodeIDs(nodes))
}

func syncEdges(ctx context.Context, tx *sql.Tx, id string, edges []journey.Edge, stamp time.Time) error {
	if err := upsertEdges(ctx, tx, id, edges, stamp); err != nil {
		return err
	}
	return pruneStale(ctx, tx, "journey_edges", "edge_id", id, edgeIDs(edges))
}

func syncGoals(ctx context.Context, tx *sql.Tx, id string, goals []journey.Goal, stamp time.Time) error {
	if err := upsertGoals(ctx, tx, id, goals, stamp); err != nil {
		return err
	}
	return pruneStale(ctx, tx, "journey_goals", "goal_id", id, goalIDs(goals))
}

func syncMilestones(ctx context.Context, tx *sql.Tx, id string, milestones []journey.Milestone, stamp time.Time) error {
	if err := upsertMilestones(ctx, tx, id, milestones, stamp); err != nil {
		return err
	}
	return pruneStale(ctx, tx, "journey_milestones", "milestone_id", id, milestoneIDs(milestones))
}

func upsertNodes(ctx context.Context, tx *sql.Tx, id string, nodes []journey.Node, stamp time.Time) error {
	for _, n := range nodes {
		data, err := encodeOpaque(n.Data)
		if err != nil {
			return fmt.Errorf("encoding node %q data: %w", n.ID, err)
		}
		var x, y float64
		if n.Position != nil {
			x, y = n.Position.X, n.Position.Y
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO journey_nodes (journey_id, node_id, node_type,
				node_subtype, position_x, position_y, data, selected, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (journey_id, node_id) DO UPDATE SET
				node_type = excluded.node_type,
				node_subtype = excluded.node_subtype,
				position_x = excluded.position_x,
				position_y = excluded.position_y,
				data = excluded.data,
				selected = excluded.selected,
				updated_at = excluded.updated_at`,
			id, n.ID, n.Type, n.Subtype, x, y, data, n.Selected, stamp)
		if err != nil {
			return fmt.Errorf("upserting node %q: %w", n.ID, err)
		}
	}
	return nil
}

func upsertEdges(ctx context.Context, tx *sql.Tx, id string, edges []journey.Edge, stamp time.Time) error {
	for _, e := range edges {
		data, err := encodeOpaque(e.Data)
		if err != nil {
			return fmt.Errorf("encoding edge %q data: %w", e.ID, err)
		}
		style, err := encodeOpaque(e.Style)
		if err != nil {
			return fmt.Errorf("encoding edge %q style: %w", e.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO journey_edges (journey_id, edge_id, source_node,
				target_node, data, selected, edge_type, animated, style, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (journey_id, edge_id) DO UPDATE SET
				source_node = excluded.source_node,
				target_node = excluded.target_node,
				data = excluded.data,
				selected = excluded.selected,
				edge_type = excluded.edge_type,
				animated = excluded.animated,
				style = excluded.style,
				updated_at = excluded.updated_at`,
			id, e.ID, e.Source, e.Target, data, e.Selected, e.Type, e.Animated, style, stamp)
		if err != nil {
			return fmt.Errorf("upserting edge %q: %w", e.ID, err)
		}
	}
	return nil
}

func upsertGoals(ctx context.Context, tx *sql.Tx, id string, goals []journey.Goal, stamp time.Time) error {
	for _, g := range goals {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO journey_goals (journey_id, goal_id, title, description,
				target_value, current_value, unit, deadline, status, priority,
				category, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (journey_id, goal_id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				target_value = excluded.target_value,
				current_value = excluded.current_value,
				unit = excluded.unit,
				deadline = excluded.deadline,
				status = excluded.status,
				priority = excluded.priority,
				category = excluded.category,
				updated_at = excluded.updated_at`,
			id, g.ID, g.Title, g.Description, g.TargetValue, g.CurrentValue,
			g.Unit, nullTime(g.Deadline), g.Status, g.Priority, g.Category, stamp)
		if err != nil {
			return fmt.Errorf("upserting goal %q: %w", g.ID, err)
		}
	}
	return nil
}

func upsertMilestones(ctx context.Context, tx *sql.Tx, id string, milestones []journey.Milestone, stamp time.Time) error {
	for _, m := range milestones {
		deps, err := encodeDependencies(m.Dependencies)
		if err != nil {
			return fmt.Errorf("encoding milestone %q dependencies: %w", m.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO journey_milestones (journey_id, milestone_id, title,
				description, target_date, status, progress, dependencies,
				sort_order, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (journey_id, milestone_id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				target_date = excluded.target_date,
				status = excluded.status,
				progress = excluded.progress,
				dependencies = excluded.dependencies,
				sort_order = excluded.sort_order,
				updated_at = excluded.updated_at`,
			id, m.ID, m.Title, m.Description, nullTime(m.TargetDate), m.Status,
			m.Progress, deps, m.SortOrder, stamp)
		if err != nil {
			return fmt.Errorf("upserting milestone %q: %w", m.ID, err)
		}
	}
	return nil
}

func upsertReports(ctx context.Context, tx *sql.Tx, id string, reports []journey.Report, stamp time.Time) error {
	for _, r := range reports {
		data, err := encodeOpaque(r.Data)
		if err != nil {
			return fmt.Errorf("encoding report %q data: %w", r.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO journey_reports (journey_id, report_id, name,
				report_type, generated_at, data, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (journey_id, report_id) DO UPDATE SET
				name = excluded.name,
				report_type = excluded.report_type,
				generated_at = excluded.generated_at,
				data = excluded.data,
				updated_at = excluded.updated_at`,
			id, r.ID, r.Name, r.Type, r.GeneratedAt, data, stamp)
		if err != nil {
			return fmt.Errorf("upserting report %q: %w", r.ID, err)
		}
	}
	return nil
}

// pruneStale deletes every record of the journey whose local id is not in
// keep. Runs after the upserts so a record that merely changed is never
// deleted and re-created.
func pruneStale(ctx context.Context, tx *sql.Tx, table, column, journeyID string, keep []string) error {
	if len(keep) == 0 {
		keep = []string{pruneSentinel}
	}
	args := make([]any, 0, len(keep)+1)
	args = append(args, journeyID)
	for _, k := range keep {
		args = append(args, k)
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE journey_id = ? AND %s NOT IN (?%s)`,
		table, column, strings.Repeat(", ?", len(keep)-1))
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("pruning %s: %w", table, err)
	}
	return nil
}

func nodeIDs(nodes []journey.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func edgeIDs(edges []journey.Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return ids
}

func goalIDs(goals []journey.Goal) []string {
	ids := make([]string, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}
	return ids
}

func milestoneIDs(milestones []journey.Milestone) []string {
	ids := make([]string, len(milestones))
	for i, m := range milestones {
		ids[i] = m.ID
	}
	return ids
}

func reportIDs(reports []journey.Report) []string {
	ids := make([]string, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
	}
	return ids
}
