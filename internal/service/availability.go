package service

import (
	"encoding/json"
	"math"

	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
)

// ParseUnavailability decodes a teacher's stored unavailability payload into
// normalized windows. It never fails: malformed payloads yield an empty list,
// malformed elements are dropped, and non-integral slot indexes are filtered
// out while the rest of the element survives. Day strings pass through
// without vocabulary checks.
func ParseUnavailability(raw types.JSONText) []dto.TeacherUnavailability {
	out := []dto.TeacherUnavailability{}
	if len(raw) == 0 {
		return out
	}

	data := []byte(raw)
	// Some writers store the payload double-encoded: a JSON string whose
	// content is the JSON document.
	var inner string
	if err := json.Unmarshal(data, &inner); err == nil {
		data = []byte(inner)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return out
	}

	for _, element := range elements {
		var entry struct {
			Day         *string       `json:"day"`
			SlotIndexes []interface{} `json:"slotIndexes"`
		}
		if err := json.Unmarshal(element, &entry); err != nil {
			continue
		}
		if entry.Day == nil || entry.SlotIndexes == nil {
			continue
		}

		slots := make([]int, 0, len(entry.SlotIndexes))
		for _, v := range entry.SlotIndexes {
			n, ok := v.(float64)
			if !ok || n != math.Trunc(n) {
				continue
			}
			slots = append(slots, int(n))
		}
		out = append(out, dto.TeacherUnavailability{Day: *entry.Day, SlotIndexes: slots})
	}
	return out
}
