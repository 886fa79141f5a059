package dto

import "encoding/json"

// SolveRequest triggers a solve for a term. Both fields are optional: the
// term falls back to the deployment default and the config overrides are
// merged over hard-coded defaults field by field.
type SolveRequest struct {
	Term   string           `json:"term"`
	Config *SolverOverrides `json:"config"`
}

// SolverOverrides is a partial solver configuration. Pointer fields
// distinguish "explicitly set" from "absent": an explicit false or 0 is
// honored, never treated as unset. A nil AvoidIndices means unset; an empty
// list is an explicit override.
type SolverOverrides struct {
	SubjectPerDayLimit *int    `json:"subjectPerDayLimit"`
	AvoidFirstPeriod   *bool   `json:"avoidFirstPeriod"`
	AvoidLastPeriod    *bool   `json:"avoidLastPeriod"`
	AvoidIndices       []int   `json:"avoidIndices"`
	SolverTimeLimitSec *int    `json:"solverTimeLimitSec"`
	RandomSeed         *int64  `json:"randomSeed"`
	ParallelPolicy     *string `json:"parallelPolicy"`
}

// SolveConfig is the fully merged configuration embedded in the input
// document.
type SolveConfig struct {
	SubjectPerDayLimit int    `json:"subjectPerDayLimit"`
	AvoidFirstPeriod   bool   `json:"avoidFirstPeriod"`
	AvoidLastPeriod    bool   `json:"avoidLastPeriod"`
	AvoidIndices       []int  `json:"avoidIndices"`
	SolverTimeLimitSec int    `json:"solverTimeLimitSec"`
	RandomSeed         *int64 `json:"randomSeed,omitempty"`
	ParallelPolicy     string `json:"parallelPolicy"`
}

// TeacherUnavailability is one normalized exclusion window: a weekday plus
// the slot indexes the teacher cannot take on that day.
type TeacherUnavailability struct {
	Day         string `json:"day"`
	SlotIndexes []int  `json:"slotIndexes"`
}

// TimeslotInput is a schedulable period as presented to the solver.
type TimeslotInput struct {
	ID        int64  `json:"id"`
	Day       string `json:"day"`
	Index     int    `json:"index"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// RoomInput is a room as presented to the solver.
type RoomInput struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	Capacity int    `json:"capacity"`
	RoomType string `json:"roomType,omitempty"`
}

// TeacherInput is a teacher with embedded parsed availability.
type TeacherInput struct {
	ID              int64                   `json:"id"`
	Name            string                  `json:"name,omitempty"`
	MaxHoursPerWeek *int                    `json:"maxHoursPerWeek,omitempty"`
	Unavailable     []TeacherUnavailability `json:"unavailable"`
}

// SubjectInput carries the subject's room requirement untouched; room
// eligibility filtering is the solver's job, not the assembler's.
type SubjectInput struct {
	ID               int64   `json:"id"`
	Code             string  `json:"code"`
	Name             string  `json:"name,omitempty"`
	RequiresRoomType *string `json:"requiresRoomType,omitempty"`
}

// GroupInput embeds the group's parallel partners from the symmetrized
// adjacency; groups without edges carry an empty list.
type GroupInput struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name,omitempty"`
	Size            int     `json:"size"`
	ParallelWithIDs []int64 `json:"parallelWithIds"`
}

// AssignmentInput is one unit of demand: place RequiredPeriods lessons for
// the subject-teacher-group tuple.
type AssignmentInput struct {
	ID              int64 `json:"id"`
	SubjectID       int64 `json:"subjectId"`
	TeacherID       int64 `json:"teacherId"`
	GroupID         int64 `json:"groupId"`
	RequiredPeriods int   `json:"requiredPeriods"`
}

// SolveInput is the self-contained document sent to the solver. The gateway
// needs no further lookups to interpret it.
type SolveInput struct {
	Term        string            `json:"term"`
	Timeslots   []TimeslotInput   `json:"timeslots"`
	Rooms       []RoomInput       `json:"rooms"`
	Teachers    []TeacherInput    `json:"teachers"`
	Subjects    []SubjectInput    `json:"subjects"`
	Groups      []GroupInput      `json:"groups"`
	Assignments []AssignmentInput `json:"assignments"`
	Config      SolveConfig       `json:"config"`
}

// LessonPlacement is one placed lesson in the solver's result, naming
// entities by identifier only.
type LessonPlacement struct {
	SubjectID  int64 `json:"subjectId"`
	TeacherID  int64 `json:"teacherId"`
	GroupID    int64 `json:"groupId"`
	RoomID     int64 `json:"roomId"`
	TimeslotID int64 `json:"timeslotId"`
}

// SolveResult is the solver's response document. Lessons stays raw so a
// missing or non-list field can be rejected with the solver's notes instead
// of failing the transport decode.
type SolveResult struct {
	Lessons        json.RawMessage `json:"lessons"`
	ObjectiveScore *int            `json:"objectiveScore,omitempty"`
	Notes          []string        `json:"notes,omitempty"`
}

// Placements decodes the lessons field. It returns ok=false when the field
// is absent, null, or not list-shaped.
func (r *SolveResult) Placements() ([]LessonPlacement, bool) {
	if r == nil || len(r.Lessons) == 0 {
		return nil, false
	}
	var placements []LessonPlacement
	if err := json.Unmarshal(r.Lessons, &placements); err != nil {
		return nil, false
	}
	if placements == nil {
		return nil, false
	}
	return placements, true
}

// SolveResponse is returned to the triggering caller on success.
type SolveResponse struct {
	ScheduleID     int64    `json:"scheduleId"`
	Term           string   `json:"term"`
	LessonCount    int      `json:"lessonCount"`
	ObjectiveScore *int     `json:"objectiveScore,omitempty"`
	Notes          []string `json:"notes,omitempty"`
}
