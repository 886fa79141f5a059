package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Teacher represents an instructor record. Unavailable holds the stored
// unavailability payload as-is; it is decoded lazily and defensively when a
// solve input is assembled.
type Teacher struct {
	ID              int64          `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Dept            string         `db:"dept" json:"dept"`
	MaxHoursPerWeek *int           `db:"max_hours_per_week" json:"max_hours_per_week,omitempty"`
	Unavailable     types.JSONText `db:"unavailable_json" json:"unavailable,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Dept      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
