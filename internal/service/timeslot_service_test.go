package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
	"github.com/noah-isme/timetable-solve-api/internal/models"
	appErrors "github.com/noah-isme/timetable-solve-api/pkg/errors"
)

type stubTimeslotRepo struct {
	slots   map[int64]models.Timeslot
	taken   map[string]int64
	created *models.Timeslot
	updated *models.Timeslot
}

func (s *stubTimeslotRepo) ListAll(context.Context) ([]models.Timeslot, error) {
	out := make([]models.Timeslot, 0, len(s.slots))
	for _, slot := range s.slots {
		out = append(out, slot)
	}
	return out, nil
}

func (s *stubTimeslotRepo) FindByID(_ context.Context, id int64) (*models.Timeslot, error) {
	slot, ok := s.slots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &slot, nil
}

func (s *stubTimeslotRepo) ExistsByDayIndex(_ context.Context, day string, index int, excludeID int64) (bool, error) {
	id, ok := s.taken[timeslotKey(day, index)]
	return ok && id != excludeID, nil
}

func (s *stubTimeslotRepo) Create(_ context.Context, slot *models.Timeslot) error {
	slot.ID = 7
	s.created = slot
	return nil
}

func (s *stubTimeslotRepo) Update(_ context.Context, slot *models.Timeslot) error {
	s.updated = slot
	return nil
}

func (s *stubTimeslotRepo) Delete(context.Context, int64) error { return nil }

func timeslotKey(day string, index int) string {
	return day + string(rune('0'+index))
}

func TestTimeslotServiceCreateRejectsDuplicateDayIndex(t *testing.T) {
	repo := &stubTimeslotRepo{taken: map[string]int64{timeslotKey("MON", 0): 1}}
	svc := NewTimeslotService(repo, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.TimeslotRequest{Day: "MON", Index: 0})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestTimeslotServiceUpdateMovesSlot(t *testing.T) {
	repo := &stubTimeslotRepo{
		slots: map[int64]models.Timeslot{3: {ID: 3, Day: "MON", Index: 2}},
		taken: map[string]int64{timeslotKey("MON", 2): 3},
	}
	svc := NewTimeslotService(repo, nil, nil, zap.NewNop())

	slot, err := svc.Update(context.Background(), 3, dto.TimeslotRequest{Day: "TUE", Index: 0, StartTime: "08:00", EndTime: "08:50"})
	require.NoError(t, err)
	assert.Equal(t, "TUE", slot.Day)
	assert.Equal(t, 0, slot.Index)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "08:00", repo.updated.StartTime)
}

func TestTimeslotServiceUpdateKeepsOwnPosition(t *testing.T) {
	// Re-saving a slot at its own day/index is not a conflict.
	repo := &stubTimeslotRepo{
		slots: map[int64]models.Timeslot{3: {ID: 3, Day: "MON", Index: 2}},
		taken: map[string]int64{timeslotKey("MON", 2): 3},
	}
	svc := NewTimeslotService(repo, nil, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), 3, dto.TimeslotRequest{Day: "MON", Index: 2})
	require.NoError(t, err)
}

func TestTimeslotServiceGetNotFound(t *testing.T) {
	svc := NewTimeslotService(&stubTimeslotRepo{}, nil, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
