package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
	"github.com/noah-isme/timetable-solve-api/internal/models"
	"github.com/noah-isme/timetable-solve-api/internal/service"
)

type fakeTeachers struct{}

func (fakeTeachers) All(context.Context) ([]models.Teacher, error) {
	return []models.Teacher{{ID: 1, Name: "Alice"}}, nil
}

type fakeSubjects struct{}

func (fakeSubjects) All(context.Context) ([]models.Subject, error) {
	return []models.Subject{{ID: 10, Code: "MATH101"}}, nil
}

type fakeRooms struct{}

func (fakeRooms) All(context.Context) ([]models.Room, error) {
	return []models.Room{{ID: 100, Capacity: 40}}, nil
}

type fakeGroups struct{}

func (fakeGroups) All(context.Context) ([]models.Group, error) {
	return []models.Group{{ID: 30, Size: 35}}, nil
}

type fakeParallels struct{}

func (fakeParallels) ListByTerm(context.Context, string) ([]models.GroupParallel, error) {
	return nil, nil
}

type fakeTimeslots struct{}

func (fakeTimeslots) ListAll(context.Context) ([]models.Timeslot, error) {
	return []models.Timeslot{{ID: 200, Day: "MON", Index: 0}}, nil
}

type fakeAssignments struct{}

func (fakeAssignments) ListForTerm(context.Context, string) ([]models.TeachingAssignment, error) {
	return []models.TeachingAssignment{{ID: 500, SubjectID: 10, TeacherID: 1, GroupID: 30, RequiredPeriods: 2}}, nil
}

type fakeSchedules struct{ count int }

func (f fakeSchedules) CreateWithLessons(_ context.Context, schedule *models.Schedule, _ []models.Lesson) (int, error) {
	schedule.ID = 42
	return f.count, nil
}

type fakeGateway struct{ result *dto.SolveResult }

func (f fakeGateway) Solve(context.Context, *dto.SolveInput) (*dto.SolveResult, error) {
	return f.result, nil
}

func newSolveHandlerFixture(result *dto.SolveResult) *SolveHandler {
	svc := service.NewSolveService(
		fakeTeachers{}, fakeSubjects{}, fakeRooms{}, fakeGroups{}, fakeParallels{},
		fakeTimeslots{}, fakeAssignments{}, fakeSchedules{count: 1}, fakeGateway{result: result},
		nil, nil, "2025-T1", 15, zap.NewNop(),
	)
	return NewSolveHandler(svc)
}

func performSolve(t *testing.T, h *SolveHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/solve", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Solve(c)
	return recorder
}

func TestSolveHandlerReturnsPersistedSchedule(t *testing.T) {
	h := newSolveHandlerFixture(&dto.SolveResult{
		Lessons: []byte(`[{"subjectId":10,"teacherId":1,"groupId":30,"roomId":100,"timeslotId":200}]`),
	})

	recorder := performSolve(t, h, `{"term":"2025-T1"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data dto.SolveResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, int64(42), envelope.Data.ScheduleID)
	assert.Equal(t, 1, envelope.Data.LessonCount)
	assert.Equal(t, "2025-T1", envelope.Data.Term)
}

func TestSolveHandlerAcceptsEmptyBody(t *testing.T) {
	h := newSolveHandlerFixture(&dto.SolveResult{
		Lessons: []byte(`[{"subjectId":10,"teacherId":1,"groupId":30,"roomId":100,"timeslotId":200}]`),
	})

	recorder := performSolve(t, h, "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestSolveHandlerRejectedSolve(t *testing.T) {
	h := newSolveHandlerFixture(&dto.SolveResult{Lessons: []byte(`[]`), Notes: []string{"infeasible"}})

	recorder := performSolve(t, h, `{}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "SOLVER_REJECTED", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "infeasible")
}

func TestSolveHandlerMalformedBody(t *testing.T) {
	h := newSolveHandlerFixture(&dto.SolveResult{Lessons: []byte(`[]`)})

	recorder := performSolve(t, h, `{"term":`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
