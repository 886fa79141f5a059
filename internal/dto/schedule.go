package dto

import "github.com/noah-isme/timetable-solve-api/internal/models"

// ScheduleDetail is a schedule with its lessons in canonical order.
type ScheduleDetail struct {
	Schedule models.Schedule `json:"schedule"`
	Lessons  []models.Lesson `json:"lessons"`
}
