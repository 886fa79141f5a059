package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-solve-api/internal/models"
)

func TestTeachingAssignmentRepositoryListForTermIncludesGlobalRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeachingAssignmentRepository(db)

	term := "2025-T1"
	rows := sqlmock.NewRows([]string{"id", "subject_id", "teacher_id", "group_id", "term", "required_periods", "created_at"}).
		AddRow(int64(1), int64(10), int64(20), int64(30), term, 3, time.Now()).
		AddRow(int64(2), int64(11), int64(21), int64(30), nil, 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM teaching_assignments WHERE term = $1 OR term IS NULL ORDER BY id ASC")).
		WithArgs(term).
		WillReturnRows(rows)

	assignments, err := repo.ListForTerm(context.Background(), term)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Nil(t, assignments[1].Term)
	assert.Equal(t, 2, assignments[1].RequiredPeriods)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeachingAssignmentRepositoryExistsByTupleNilTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeachingAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teaching_assignments WHERE subject_id = $1 AND teacher_id = $2 AND group_id = $3 AND id != $4 AND term IS NULL LIMIT 1")).
		WithArgs(int64(1), int64(2), int64(3), int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err := repo.ExistsByTuple(context.Background(), 1, 2, 3, nil, 0)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeachingAssignmentRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeachingAssignmentRepository(db)

	term := "2025-T1"
	mock.ExpectQuery("INSERT INTO teaching_assignments").
		WithArgs(int64(1), int64(2), int64(3), sqlmock.AnyArg(), 4, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	assignment := &models.TeachingAssignment{SubjectID: 1, TeacherID: 2, GroupID: 3, Term: &term, RequiredPeriods: 4}
	require.NoError(t, repo.Create(context.Background(), assignment))
	assert.Equal(t, int64(9), assignment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
