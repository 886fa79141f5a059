package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-solve-api/internal/models"
)

// weekdayOrder sorts rows MON through FRI; anything unrecognized sinks to the
// end instead of failing the query.
const weekdayOrder = `CASE day WHEN 'MON' THEN 1 WHEN 'TUE' THEN 2 WHEN 'WED' THEN 3 WHEN 'THU' THEN 4 WHEN 'FRI' THEN 5 ELSE 6 END`

// TimeslotRepository manages persistence for timeslots.
type TimeslotRepository struct {
	db *sqlx.DB
}

// NewTimeslotRepository constructs a TimeslotRepository.
func NewTimeslotRepository(db *sqlx.DB) *TimeslotRepository {
	return &TimeslotRepository{db: db}
}

// ListAll returns every timeslot in canonical order: weekday sequence first,
// then slot index within the day.
func (r *TimeslotRepository) ListAll(ctx context.Context) ([]models.Timeslot, error) {
	query := `SELECT id, day, "index", start_time, end_time FROM timeslots ORDER BY ` + weekdayOrder + `, "index" ASC`
	var slots []models.Timeslot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list timeslots: %w", err)
	}
	return slots, nil
}

// FindByID fetches a timeslot by ID.
func (r *TimeslotRepository) FindByID(ctx context.Context, id int64) (*models.Timeslot, error) {
	const query = `SELECT id, day, "index", start_time, end_time FROM timeslots WHERE id = $1`
	var slot models.Timeslot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ExistsByDayIndex checks whether another timeslot occupies the same day and
// index, excluding the given id when updating.
func (r *TimeslotRepository) ExistsByDayIndex(ctx context.Context, day string, index int, excludeID int64) (bool, error) {
	const query = `SELECT 1 FROM timeslots WHERE day = $1 AND "index" = $2 AND id != $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, day, index, excludeID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check timeslot day/index: %w", err)
	}
	return true, nil
}

// Create inserts a new timeslot record.
func (r *TimeslotRepository) Create(ctx context.Context, slot *models.Timeslot) error {
	const query = `INSERT INTO timeslots (day, "index", start_time, end_time)
		VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.GetContext(ctx, &slot.ID, query, slot.Day, slot.Index, slot.StartTime, slot.EndTime); err != nil {
		return fmt.Errorf("create timeslot: %w", err)
	}
	return nil
}

// Update persists changes to an existing timeslot.
func (r *TimeslotRepository) Update(ctx context.Context, slot *models.Timeslot) error {
	const query = `UPDATE timeslots SET day = :day, "index" = :index, start_time = :start_time, end_time = :end_time WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update timeslot: %w", err)
	}
	return nil
}

// Delete removes a timeslot by id.
func (r *TimeslotRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timeslots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete timeslot: %w", err)
	}
	return nil
}
