package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-solve-api/internal/models"
)

// TeachingAssignmentRepository manages persistence for teaching assignments.
type TeachingAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeachingAssignmentRepository constructs a TeachingAssignmentRepository.
func NewTeachingAssignmentRepository(db *sqlx.DB) *TeachingAssignmentRepository {
	return &TeachingAssignmentRepository{db: db}
}

// List returns assignments matching filters along with total count.
func (r *TeachingAssignmentRepository) List(ctx context.Context, filter models.TeachingAssignmentFilter) ([]models.TeachingAssignment, int, error) {
	base := "FROM teaching_assignments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Term != "" {
		conditions = append(conditions, fmt.Sprintf("(term = $%d OR term IS NULL)", len(args)+1))
		args = append(args, filter.Term)
	}
	if filter.TeacherID != 0 {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.GroupID != 0 {
		conditions = append(conditions, fmt.Sprintf("group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, subject_id, teacher_id, group_id, term, required_periods, created_at %s ORDER BY id ASC LIMIT %d OFFSET %d", base, size, offset)
	var assignments []models.TeachingAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}

	return assignments, total, nil
}

// ListForTerm returns the assignments that apply to a term: rows scoped to
// that exact term plus global rows with no term.
func (r *TeachingAssignmentRepository) ListForTerm(ctx context.Context, term string) ([]models.TeachingAssignment, error) {
	const query = `SELECT id, subject_id, teacher_id, group_id, term, required_periods, created_at FROM teaching_assignments WHERE term = $1 OR term IS NULL ORDER BY id ASC`
	var assignments []models.TeachingAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, term); err != nil {
		return nil, fmt.Errorf("load assignments for term: %w", err)
	}
	return assignments, nil
}

// FindByID fetches an assignment by ID.
func (r *TeachingAssignmentRepository) FindByID(ctx context.Context, id int64) (*models.TeachingAssignment, error) {
	const query = `SELECT id, subject_id, teacher_id, group_id, term, required_periods, created_at FROM teaching_assignments WHERE id = $1`
	var assignment models.TeachingAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ExistsByTuple checks whether an assignment with the same subject, teacher,
// group, and term already exists, excluding the given id when updating. A nil
// term matches the global rows only.
func (r *TeachingAssignmentRepository) ExistsByTuple(ctx context.Context, subjectID, teacherID, groupID int64, term *string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM teaching_assignments WHERE subject_id = $1 AND teacher_id = $2 AND group_id = $3 AND id != $4"
	args := []interface{}{subjectID, teacherID, groupID, excludeID}
	if term == nil {
		query += " AND term IS NULL"
	} else {
		query += " AND term = $5"
		args = append(args, *term)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check assignment tuple: %w", err)
	}
	return true, nil
}

// Create inserts a new assignment record.
func (r *TeachingAssignmentRepository) Create(ctx context.Context, assignment *models.TeachingAssignment) error {
	assignment.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO teaching_assignments (subject_id, teacher_id, group_id, term, required_periods, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.GetContext(ctx, &assignment.ID, query, assignment.SubjectID, assignment.TeacherID, assignment.GroupID, assignment.Term, assignment.RequiredPeriods, assignment.CreatedAt); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update persists changes to an assignment's term and required periods. The
// subject/teacher/group identity of an assignment never changes in place.
func (r *TeachingAssignmentRepository) Update(ctx context.Context, assignment *models.TeachingAssignment) error {
	const query = `UPDATE teaching_assignments SET term = :term, required_periods = :required_periods WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment by id.
func (r *TeachingAssignmentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teaching_assignments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
