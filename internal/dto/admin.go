package dto

import "encoding/json"

// TeacherRequest carries teacher create/update payloads. Unavailable is kept
// raw: the stored payload is decoded defensively at solve time, never on
// write.
type TeacherRequest struct {
	Name            string          `json:"name" validate:"required"`
	Dept            string          `json:"dept"`
	MaxHoursPerWeek *int            `json:"max_hours_per_week" validate:"omitempty,min=1"`
	Unavailable     json.RawMessage `json:"unavailable"`
}

// SubjectRequest carries subject create/update payloads.
type SubjectRequest struct {
	Code             string  `json:"code" validate:"required"`
	Name             string  `json:"name" validate:"required"`
	PeriodsPerWeek   int     `json:"periods_per_week" validate:"required,min=1"`
	RequiresRoomType *string `json:"requires_room_type" validate:"omitempty,oneof=LECTURE LAB SEMINAR"`
}

// RoomRequest carries room create/update payloads.
type RoomRequest struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
	RoomType string `json:"room_type" validate:"required,oneof=LECTURE LAB SEMINAR"`
}

// GroupRequest carries group create/update payloads.
type GroupRequest struct {
	Name  string `json:"name" validate:"required"`
	Dept  string `json:"dept"`
	Level int    `json:"level" validate:"min=0"`
	Size  int    `json:"size" validate:"required,min=1"`
}

// GroupParallelRequest creates one parallel edge. The pair is stored exactly
// as given; direction does not matter at the domain level.
type GroupParallelRequest struct {
	Term     string `json:"term" validate:"required"`
	GroupAID int64  `json:"group_a_id" validate:"required"`
	GroupBID int64  `json:"group_b_id" validate:"required"`
}

// TimeslotRequest carries timeslot create payloads.
type TimeslotRequest struct {
	Day       string `json:"day" validate:"required,oneof=MON TUE WED THU FRI"`
	Index     int    `json:"index" validate:"min=0"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// TeachingAssignmentRequest carries assignment create payloads. A nil term
// makes the assignment global across terms.
type TeachingAssignmentRequest struct {
	SubjectID       int64   `json:"subject_id" validate:"required"`
	TeacherID       int64   `json:"teacher_id" validate:"required"`
	GroupID         int64   `json:"group_id" validate:"required"`
	Term            *string `json:"term"`
	RequiredPeriods int     `json:"required_periods" validate:"required,min=1"`
}

// TeachingAssignmentUpdateRequest adjusts an existing assignment. The
// subject/teacher/group identity is fixed; only the term scope and the
// weekly demand can change.
type TeachingAssignmentUpdateRequest struct {
	Term            *string `json:"term"`
	RequiredPeriods int     `json:"required_periods" validate:"required,min=1"`
}
