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

// ScheduleRepository provides persistence for schedules and their lessons.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// CreateWithLessons writes the schedule row and its lessons in one
// transaction. Duplicate lessons within the batch are skipped by the unique
// constraint; the returned count is the number of rows actually inserted. On
// any error nothing is persisted.
func (r *ScheduleRepository) CreateWithLessons(ctx context.Context, schedule *models.Schedule, lessons []models.Lesson) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create schedule: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	schedule.CreatedAt = time.Now().UTC()
	const scheduleQuery = `INSERT INTO schedules (term, notes, created_at) VALUES ($1, $2, $3) RETURNING id`
	if err = tx.GetContext(ctx, &schedule.ID, scheduleQuery, schedule.Term, schedule.Notes, schedule.CreatedAt); err != nil {
		err = fmt.Errorf("insert schedule: %w", err)
		return 0, err
	}

	inserted := 0
	const lessonQuery = `INSERT INTO lessons (schedule_id, subject_id, teacher_id, group_id, room_id, timeslot_id, assignment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (schedule_id, subject_id, teacher_id, group_id, room_id, timeslot_id) DO NOTHING`
	for i := range lessons {
		lesson := lessons[i]
		lesson.ScheduleID = schedule.ID
		lesson.CreatedAt = schedule.CreatedAt

		var res sql.Result
		res, err = tx.ExecContext(ctx, lessonQuery, lesson.ScheduleID, lesson.SubjectID, lesson.TeacherID, lesson.GroupID, lesson.RoomID, lesson.TimeslotID, lesson.AssignmentID, lesson.CreatedAt)
		if err != nil {
			err = fmt.Errorf("insert lesson: %w", err)
			return 0, err
		}
		var affected int64
		if affected, err = res.RowsAffected(); err != nil {
			err = fmt.Errorf("insert lesson rows affected: %w", err)
			return 0, err
		}
		inserted += int(affected)
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("commit create schedule: %w", err)
		return 0, err
	}
	return inserted, nil
}

// List returns schedules with optional filtering and pagination, newest first.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	base := "FROM schedules WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Term != "" {
		conditions = append(conditions, fmt.Sprintf("term = $%d", len(args)+1))
		args = append(args, filter.Term)
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

	query := fmt.Sprintf("SELECT id, term, notes, created_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", base, size, offset)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	return schedules, total, nil
}

// FindByID loads a schedule by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*models.Schedule, error) {
	const query = `SELECT id, term, notes, created_at FROM schedules WHERE id = $1`
	var sched models.Schedule
	if err := r.db.GetContext(ctx, &sched, query, id); err != nil {
		return nil, err
	}
	return &sched, nil
}

// ListLessons returns a schedule's lessons in canonical timetable order.
func (r *ScheduleRepository) ListLessons(ctx context.Context, scheduleID int64) ([]models.Lesson, error) {
	const query = `SELECT l.id, l.schedule_id, l.subject_id, l.teacher_id, l.group_id, l.room_id, l.timeslot_id, l.assignment_id, l.created_at
		FROM lessons l JOIN timeslots t ON t.id = l.timeslot_id
		WHERE l.schedule_id = $1
		ORDER BY CASE t.day WHEN 'MON' THEN 1 WHEN 'TUE' THEN 2 WHEN 'WED' THEN 3 WHEN 'THU' THEN 4 WHEN 'FRI' THEN 5 ELSE 6 END, t."index" ASC, l.group_id ASC`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}
