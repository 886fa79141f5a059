package models

import "time"

// TeachingAssignment is the authoritative unit of work to schedule: one
// subject taught by one teacher to one group, requiring RequiredPeriods
// lesson placements per week. A nil Term marks a global assignment that
// applies to every term. The tuple (subject, teacher, group, term) is unique.
type TeachingAssignment struct {
	ID              int64     `db:"id" json:"id"`
	SubjectID       int64     `db:"subject_id" json:"subject_id"`
	TeacherID       int64     `db:"teacher_id" json:"teacher_id"`
	GroupID         int64     `db:"group_id" json:"group_id"`
	Term            *string   `db:"term" json:"term,omitempty"`
	RequiredPeriods int       `db:"required_periods" json:"required_periods"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// TeachingAssignmentFilter captures filtering options for listing assignments.
type TeachingAssignmentFilter struct {
	Term      string
	TeacherID int64
	GroupID   int64
	Page      int
	PageSize  int
}
