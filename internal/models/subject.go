package models

import "time"

// Room categories a subject may require.
const (
	RoomTypeLecture = "LECTURE"
	RoomTypeLab     = "LAB"
	RoomTypeSeminar = "SEMINAR"
)

// Subject is immutable reference data for a solve.
type Subject struct {
	ID               int64     `db:"id" json:"id"`
	Code             string    `db:"code" json:"code"`
	Name             string    `db:"name" json:"name"`
	PeriodsPerWeek   int       `db:"periods_per_week" json:"periods_per_week"`
	RequiresRoomType *string   `db:"requires_room_type" json:"requires_room_type,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures filtering options for listing subjects.
type SubjectFilter struct {
	Search    string
	RoomType  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
