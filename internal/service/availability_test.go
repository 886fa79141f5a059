package service

import (
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
)

func TestParseUnavailability(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []dto.TeacherUnavailability
	}{
		{
			name: "empty payload",
			raw:  "",
			want: []dto.TeacherUnavailability{},
		},
		{
			name: "null payload",
			raw:  "null",
			want: []dto.TeacherUnavailability{},
		},
		{
			name: "not an array",
			raw:  `{"day":"MON","slotIndexes":[1]}`,
			want: []dto.TeacherUnavailability{},
		},
		{
			name: "garbage",
			raw:  `{{{`,
			want: []dto.TeacherUnavailability{},
		},
		{
			name: "well formed",
			raw:  `[{"day":"MON","slotIndexes":[0,1]},{"day":"FRI","slotIndexes":[5]}]`,
			want: []dto.TeacherUnavailability{
				{Day: "MON", SlotIndexes: []int{0, 1}},
				{Day: "FRI", SlotIndexes: []int{5}},
			},
		},
		{
			name: "double encoded string",
			raw:  `"[{\"day\":\"TUE\",\"slotIndexes\":[2]}]"`,
			want: []dto.TeacherUnavailability{{Day: "TUE", SlotIndexes: []int{2}}},
		},
		{
			name: "malformed elements dropped",
			raw:  `[{"day":"MON","slotIndexes":[0]},{"slotIndexes":[1]},{"day":42,"slotIndexes":[1]},{"day":"WED"},{"day":"THU","slotIndexes":"nope"},null]`,
			want: []dto.TeacherUnavailability{{Day: "MON", SlotIndexes: []int{0}}},
		},
		{
			name: "non integral slot indexes filtered",
			raw:  `[{"day":"MON","slotIndexes":[0,1.5,"2",3,null]}]`,
			want: []dto.TeacherUnavailability{{Day: "MON", SlotIndexes: []int{0, 3}}},
		},
		{
			name: "empty slot list survives",
			raw:  `[{"day":"MON","slotIndexes":[]}]`,
			want: []dto.TeacherUnavailability{{Day: "MON", SlotIndexes: []int{}}},
		},
		{
			name: "unknown day passes through",
			raw:  `[{"day":"SUN","slotIndexes":[0]}]`,
			want: []dto.TeacherUnavailability{{Day: "SUN", SlotIndexes: []int{0}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUnavailability(types.JSONText(tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}
