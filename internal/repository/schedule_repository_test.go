package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-solve-api/internal/models"
)

func TestScheduleRepositoryCreateWithLessonsCountsInsertedRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO schedules").
		WithArgs("2025-T1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec("INSERT INTO lessons").
		WithArgs(int64(42), int64(1), int64(2), int64(3), int64(4), int64(5), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Duplicate placement: the unique constraint swallows it.
	mock.ExpectExec("INSERT INTO lessons").
		WithArgs(int64(42), int64(1), int64(2), int64(3), int64(4), int64(5), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	schedule := &models.Schedule{Term: "2025-T1"}
	lessons := []models.Lesson{
		{SubjectID: 1, TeacherID: 2, GroupID: 3, RoomID: 4, TimeslotID: 5},
		{SubjectID: 1, TeacherID: 2, GroupID: 3, RoomID: 4, TimeslotID: 5},
	}

	count, err := repo.CreateWithLessons(context.Background(), schedule, lessons)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, int64(42), schedule.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateWithLessonsRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO schedules").
		WithArgs("2025-T1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec("INSERT INTO lessons").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	schedule := &models.Schedule{Term: "2025-T1"}
	lessons := []models.Lesson{{SubjectID: 1, TeacherID: 2, GroupID: 3, RoomID: 4, TimeslotID: 5}}

	_, err := repo.CreateWithLessons(context.Background(), schedule, lessons)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListLessonsOrdersByTimeslot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "schedule_id", "subject_id", "teacher_id", "group_id", "room_id", "timeslot_id", "assignment_id", "created_at"}).
		AddRow(int64(1), int64(42), int64(1), int64(2), int64(3), int64(4), int64(5), nil, time.Now()).
		AddRow(int64(2), int64(42), int64(1), int64(2), int64(3), int64(4), int64(6), nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("JOIN timeslots t ON t.id = l.timeslot_id")).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	lessons, err := repo.ListLessons(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, lessons, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
