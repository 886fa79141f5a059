package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-solve-api/internal/models"
	appErrors "github.com/noah-isme/timetable-solve-api/pkg/errors"
)

type stubScheduleRepo struct {
	schedule *models.Schedule
	lessons  []models.Lesson
}

func (s *stubScheduleRepo) List(context.Context, models.ScheduleFilter) ([]models.Schedule, int, error) {
	if s.schedule == nil {
		return nil, 0, nil
	}
	return []models.Schedule{*s.schedule}, 1, nil
}

func (s *stubScheduleRepo) FindByID(_ context.Context, id int64) (*models.Schedule, error) {
	if s.schedule == nil || s.schedule.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.schedule, nil
}

func (s *stubScheduleRepo) ListLessons(context.Context, int64) ([]models.Lesson, error) {
	return s.lessons, nil
}

func newScheduleFixture(repo *stubScheduleRepo) *ScheduleService {
	return NewScheduleService(
		repo,
		stubTeachers{items: []models.Teacher{{ID: 1, Name: "Alice"}}},
		stubSubjects{items: []models.Subject{{ID: 10, Code: "MATH101"}}},
		stubRooms{items: []models.Room{{ID: 100, Name: "R1"}}},
		stubGroups{items: []models.Group{{ID: 30, Name: "CPE1"}}},
		stubTimeslots{items: []models.Timeslot{{ID: 200, Day: "MON", Index: 0, StartTime: "08:00", EndTime: "08:50"}}},
		nil,
		zap.NewNop(),
	)
}

func TestScheduleServiceGetNotFound(t *testing.T) {
	svc := newScheduleFixture(&stubScheduleRepo{})

	_, err := svc.Get(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceExportCSVResolvesLabels(t *testing.T) {
	repo := &stubScheduleRepo{
		schedule: &models.Schedule{ID: 5, Term: "2025-T1"},
		lessons: []models.Lesson{
			{ID: 1, ScheduleID: 5, SubjectID: 10, TeacherID: 1, GroupID: 30, RoomID: 100, TimeslotID: 200},
			{ID: 2, ScheduleID: 5, SubjectID: 10, TeacherID: 99, GroupID: 30, RoomID: 100, TimeslotID: 200},
		},
	}
	svc := newScheduleFixture(repo)

	payload, filename, contentType, err := svc.Export(context.Background(), 5, "")
	require.NoError(t, err)
	assert.Equal(t, "schedule-5.csv", filename)
	assert.Equal(t, "text/csv", contentType)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Timeslot,Group,Subject,Teacher,Room", lines[0])
	assert.Contains(t, lines[1], "MON 0 (08:00-08:50)")
	assert.Contains(t, lines[1], "Alice")
	// Unknown references fall back to the raw id.
	assert.Contains(t, lines[2], "99")
}

func TestScheduleServiceExportRejectsUnknownFormat(t *testing.T) {
	repo := &stubScheduleRepo{schedule: &models.Schedule{ID: 5, Term: "2025-T1"}}
	svc := newScheduleFixture(repo)

	_, _, _, err := svc.Export(context.Background(), 5, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
