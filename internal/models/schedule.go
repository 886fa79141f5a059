package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Schedule is one persisted solve attempt for a term. Its lesson set is
// written once, in a single transaction, and never mutated afterwards.
type Schedule struct {
	ID        int64          `db:"id" json:"id"`
	Term      string         `db:"term" json:"term"`
	Notes     types.JSONText `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Lesson is one placed occurrence of a teaching assignment. AssignmentID is
// nil when the solver placed a lesson whose (subject, teacher, group, term)
// tuple matched no known assignment.
type Lesson struct {
	ID           int64     `db:"id" json:"id"`
	ScheduleID   int64     `db:"schedule_id" json:"schedule_id"`
	SubjectID    int64     `db:"subject_id" json:"subject_id"`
	TeacherID    int64     `db:"teacher_id" json:"teacher_id"`
	GroupID      int64     `db:"group_id" json:"group_id"`
	RoomID       int64     `db:"room_id" json:"room_id"`
	TimeslotID   int64     `db:"timeslot_id" json:"timeslot_id"`
	AssignmentID *int64    `db:"assignment_id" json:"assignment_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ScheduleFilter captures filtering options for listing schedules.
type ScheduleFilter struct {
	Term     string
	Page     int
	PageSize int
}

// SolveRejectedError signals a solver result that could not be persisted:
// no lessons, or a lessons field that is not list-shaped. Notes carry the
// solver's own diagnostics.
type SolveRejectedError struct {
	Message string
	Notes   []string
}

func (e *SolveRejectedError) Error() string {
	if len(e.Notes) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (solver notes: %s)", e.Message, strings.Join(e.Notes, "; "))
}
