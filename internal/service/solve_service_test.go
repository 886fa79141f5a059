package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
	"github.com/noah-isme/timetable-solve-api/internal/models"
	appErrors "github.com/noah-isme/timetable-solve-api/pkg/errors"
)

type stubTeachers struct {
	items []models.Teacher
	err   error
}

func (s stubTeachers) All(context.Context) ([]models.Teacher, error) { return s.items, s.err }

type stubSubjects struct{ items []models.Subject }

func (s stubSubjects) All(context.Context) ([]models.Subject, error) { return s.items, nil }

type stubRooms struct{ items []models.Room }

func (s stubRooms) All(context.Context) ([]models.Room, error) { return s.items, nil }

type stubGroups struct{ items []models.Group }

func (s stubGroups) All(context.Context) ([]models.Group, error) { return s.items, nil }

type stubParallels struct{ items []models.GroupParallel }

func (s stubParallels) ListByTerm(context.Context, string) ([]models.GroupParallel, error) {
	return s.items, nil
}

type stubTimeslots struct{ items []models.Timeslot }

func (s stubTimeslots) ListAll(context.Context) ([]models.Timeslot, error) { return s.items, nil }

type stubAssignments struct{ items []models.TeachingAssignment }

func (s stubAssignments) ListForTerm(context.Context, string) ([]models.TeachingAssignment, error) {
	return s.items, nil
}

type stubSchedules struct {
	schedule *models.Schedule
	lessons  []models.Lesson
	count    int
	err      error
	calls    int
}

func (s *stubSchedules) CreateWithLessons(_ context.Context, schedule *models.Schedule, lessons []models.Lesson) (int, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	schedule.ID = 42
	s.schedule = schedule
	s.lessons = lessons
	return s.count, nil
}

type stubGateway struct {
	input  *dto.SolveInput
	result *dto.SolveResult
	err    error
}

func (s *stubGateway) Solve(_ context.Context, input *dto.SolveInput) (*dto.SolveResult, error) {
	s.input = input
	return s.result, s.err
}

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func newSolveFixture(gateway *stubGateway, schedules *stubSchedules) *SolveService {
	term := "2025-T1"
	maxHours := 20
	return NewSolveService(
		stubTeachers{items: []models.Teacher{
			{ID: 1, Name: "Alice", Unavailable: types.JSONText(`[{"day":"MON","slotIndexes":[0,1]}]`)},
			{ID: 2, Name: "Bob", MaxHoursPerWeek: &maxHours, Unavailable: types.JSONText(`not json`)},
		}},
		stubSubjects{items: []models.Subject{{ID: 10, Code: "MATH101", Name: "Calculus", RequiresRoomType: strPtr("LAB")}}},
		stubRooms{items: []models.Room{{ID: 100, Name: "R1", Capacity: 40, RoomType: models.RoomTypeLecture}}},
		stubGroups{items: []models.Group{{ID: 30, Name: "CPE1", Size: 35}, {ID: 31, Name: "CPE2", Size: 30}}},
		stubParallels{items: []models.GroupParallel{{ID: 1, Term: "2025-T1", GroupAID: 30, GroupBID: 31}}},
		stubTimeslots{items: []models.Timeslot{{ID: 200, Day: "MON", Index: 0}, {ID: 201, Day: "MON", Index: 1}}},
		stubAssignments{items: []models.TeachingAssignment{
			{ID: 500, SubjectID: 10, TeacherID: 1, GroupID: 30, Term: &term, RequiredPeriods: 3},
			{ID: 501, SubjectID: 10, TeacherID: 2, GroupID: 31, Term: nil, RequiredPeriods: 2},
		}},
		schedules,
		gateway,
		nil,
		nil,
		"2025-T1",
		15,
		zap.NewNop(),
	)
}

func TestSolveServicePersistsReconciledLessons(t *testing.T) {
	schedules := &stubSchedules{count: 2}
	gateway := &stubGateway{result: &dto.SolveResult{
		Lessons:        []byte(`[{"subjectId":10,"teacherId":1,"groupId":30,"roomId":100,"timeslotId":200},{"subjectId":10,"teacherId":2,"groupId":31,"roomId":100,"timeslotId":201},{"subjectId":99,"teacherId":99,"groupId":99,"roomId":100,"timeslotId":200}]`),
		ObjectiveScore: intPtr(7),
		Notes:          []string{"relaxed first period"},
	}}
	svc := newSolveFixture(gateway, schedules)

	resp, err := svc.Solve(context.Background(), dto.SolveRequest{})
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.ScheduleID)
	assert.Equal(t, "2025-T1", resp.Term)
	assert.Equal(t, 2, resp.LessonCount)
	require.NotNil(t, resp.ObjectiveScore)
	assert.Equal(t, 7, *resp.ObjectiveScore)
	assert.Equal(t, []string{"relaxed first period"}, resp.Notes)

	// Input document assembly.
	input := gateway.input
	require.NotNil(t, input)
	assert.Equal(t, "2025-T1", input.Term)
	require.Len(t, input.Teachers, 2)
	assert.Equal(t, []dto.TeacherUnavailability{{Day: "MON", SlotIndexes: []int{0, 1}}}, input.Teachers[0].Unavailable)
	assert.Empty(t, input.Teachers[1].Unavailable)
	require.Len(t, input.Groups, 2)
	assert.Equal(t, []int64{31}, input.Groups[0].ParallelWithIDs)
	assert.Equal(t, []int64{30}, input.Groups[1].ParallelWithIDs)
	require.Len(t, input.Assignments, 2)
	require.Len(t, input.Subjects, 1)
	require.NotNil(t, input.Subjects[0].RequiresRoomType)
	assert.Equal(t, "LAB", *input.Subjects[0].RequiresRoomType)
	require.Len(t, input.Rooms, 1)
	assert.Equal(t, models.RoomTypeLecture, input.Rooms[0].RoomType)
	assert.Equal(t, 1, input.Config.SubjectPerDayLimit)
	assert.True(t, input.Config.AvoidFirstPeriod)
	assert.Equal(t, 15, input.Config.SolverTimeLimitSec)
	assert.Equal(t, ParallelPolicyBlock, input.Config.ParallelPolicy)

	// Reconciliation: term-scoped and global assignments both resolve; the
	// unknown tuple is kept without an assignment reference.
	require.Len(t, schedules.lessons, 3)
	require.NotNil(t, schedules.lessons[0].AssignmentID)
	assert.Equal(t, int64(500), *schedules.lessons[0].AssignmentID)
	require.NotNil(t, schedules.lessons[1].AssignmentID)
	assert.Equal(t, int64(501), *schedules.lessons[1].AssignmentID)
	assert.Nil(t, schedules.lessons[2].AssignmentID)

	require.NotNil(t, schedules.schedule)
	assert.Equal(t, "2025-T1", schedules.schedule.Term)
	assert.JSONEq(t, `["relaxed first period"]`, string(schedules.schedule.Notes))
}

func TestSolveServiceRejectsEmptyResult(t *testing.T) {
	schedules := &stubSchedules{count: 0}
	gateway := &stubGateway{result: &dto.SolveResult{Lessons: []byte(`[]`), Notes: []string{"infeasible"}}}
	svc := newSolveFixture(gateway, schedules)

	_, err := svc.Solve(context.Background(), dto.SolveRequest{Term: "2025-T2"})
	require.Error(t, err)

	var rejected *models.SolveRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, []string{"infeasible"}, rejected.Notes)
	assert.Zero(t, schedules.calls, "nothing may be persisted for a rejected result")
}

func TestSolveServiceRejectsNonListLessons(t *testing.T) {
	schedules := &stubSchedules{}
	gateway := &stubGateway{result: &dto.SolveResult{Lessons: []byte(`"oops"`)}}
	svc := newSolveFixture(gateway, schedules)

	_, err := svc.Solve(context.Background(), dto.SolveRequest{})
	var rejected *models.SolveRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Zero(t, schedules.calls)
}

func TestSolveServicePropagatesSolverFailure(t *testing.T) {
	schedules := &stubSchedules{}
	cause := appErrors.Wrap(errors.New("dial tcp: refused"), appErrors.ErrSolverUnavailable.Code, appErrors.ErrSolverUnavailable.Status, appErrors.ErrSolverUnavailable.Message)
	gateway := &stubGateway{err: cause}
	svc := newSolveFixture(gateway, schedules)

	_, err := svc.Solve(context.Background(), dto.SolveRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSolverUnavailable.Code, appErrors.FromError(err).Code)
	assert.Zero(t, schedules.calls)
}

func TestMergeConfigExplicitValuesWin(t *testing.T) {
	svc := newSolveFixture(&stubGateway{}, &stubSchedules{})

	cfg := svc.mergeConfig(&dto.SolverOverrides{
		SubjectPerDayLimit: intPtr(2),
		AvoidFirstPeriod:   boolPtr(false),
		AvoidIndices:       []int{},
		SolverTimeLimitSec: intPtr(30),
		ParallelPolicy:     strPtr(ParallelPolicySoft),
	})

	assert.Equal(t, 2, cfg.SubjectPerDayLimit)
	assert.False(t, cfg.AvoidFirstPeriod, "explicit false must not fall back to the default")
	assert.True(t, cfg.AvoidLastPeriod)
	assert.Equal(t, []int{}, cfg.AvoidIndices)
	assert.Equal(t, 30, cfg.SolverTimeLimitSec)
	assert.Equal(t, ParallelPolicySoft, cfg.ParallelPolicy)
	assert.Nil(t, cfg.RandomSeed)
}

func TestBuildParallelGroups(t *testing.T) {
	adjacency := buildParallelGroups([]models.GroupParallel{
		{GroupAID: 1, GroupBID: 2},
		{GroupAID: 2, GroupBID: 1}, // reverse duplicate
		{GroupAID: 1, GroupBID: 3},
		{GroupAID: 4, GroupBID: 4}, // self edge stored as-is
	})

	assert.Equal(t, []int64{2, 3}, adjacency[1])
	assert.Equal(t, []int64{1}, adjacency[2])
	assert.Equal(t, []int64{1}, adjacency[3])
	assert.Equal(t, []int64{4}, adjacency[4])
	assert.NotContains(t, adjacency, int64(5))
}
