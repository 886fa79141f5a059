package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-solve-api/internal/models"
)

// GroupParallelRepository manages stored parallel-group edges.
type GroupParallelRepository struct {
	db *sqlx.DB
}

// NewGroupParallelRepository constructs a GroupParallelRepository.
func NewGroupParallelRepository(db *sqlx.DB) *GroupParallelRepository {
	return &GroupParallelRepository{db: db}
}

// ListByTerm returns the directed edge rows stored for a term, in insertion
// order. Rows are returned exactly as stored, self-edges included;
// symmetrization happens when the adjacency is built.
func (r *GroupParallelRepository) ListByTerm(ctx context.Context, term string) ([]models.GroupParallel, error) {
	const query = `SELECT id, term, group_a_id, group_b_id, created_at FROM group_parallels WHERE term = $1 ORDER BY id ASC`
	var edges []models.GroupParallel
	if err := r.db.SelectContext(ctx, &edges, query, term); err != nil {
		return nil, fmt.Errorf("list group parallels: %w", err)
	}
	return edges, nil
}

// Create inserts a new edge row as given, without reordering the pair.
func (r *GroupParallelRepository) Create(ctx context.Context, edge *models.GroupParallel) error {
	edge.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO group_parallels (term, group_a_id, group_b_id, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.GetContext(ctx, &edge.ID, query, edge.Term, edge.GroupAID, edge.GroupBID, edge.CreatedAt); err != nil {
		return fmt.Errorf("create group parallel: %w", err)
	}
	return nil
}

// Delete removes an edge row by id.
func (r *GroupParallelRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM group_parallels WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete group parallel: %w", err)
	}
	return nil
}
