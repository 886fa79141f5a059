package models

// Weekdays is the canonical teaching-day sequence. Timeslot ordering is this
// sequence first, then index within the day.
var Weekdays = []string{"MON", "TUE", "WED", "THU", "FRI"}

// Timeslot is one teaching period on a weekday. Timeslots are shared across
// terms; they are never term-scoped.
type Timeslot struct {
	ID        int64  `db:"id" json:"id"`
	Day       string `db:"day" json:"day"`
	Index     int    `db:"index" json:"index"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
}
