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

type stubAssignmentRepo struct {
	byID     map[int64]models.TeachingAssignment
	conflict bool
	updated  *models.TeachingAssignment
}

func (s *stubAssignmentRepo) List(context.Context, models.TeachingAssignmentFilter) ([]models.TeachingAssignment, int, error) {
	return nil, 0, nil
}

func (s *stubAssignmentRepo) FindByID(_ context.Context, id int64) (*models.TeachingAssignment, error) {
	assignment, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &assignment, nil
}

func (s *stubAssignmentRepo) ExistsByTuple(context.Context, int64, int64, int64, *string, int64) (bool, error) {
	return s.conflict, nil
}

func (s *stubAssignmentRepo) Create(context.Context, *models.TeachingAssignment) error { return nil }

func (s *stubAssignmentRepo) Update(_ context.Context, assignment *models.TeachingAssignment) error {
	s.updated = assignment
	return nil
}

func (s *stubAssignmentRepo) Delete(context.Context, int64) error { return nil }

func TestAssignmentServiceUpdateChangesTermAndDemand(t *testing.T) {
	term := "2025-T1"
	repo := &stubAssignmentRepo{byID: map[int64]models.TeachingAssignment{
		5: {ID: 5, SubjectID: 10, TeacherID: 1, GroupID: 30, Term: &term, RequiredPeriods: 2},
	}}
	svc := NewAssignmentService(repo, nil, nil, nil, nil, zap.NewNop())

	next := "2025-T2"
	assignment, err := svc.Update(context.Background(), 5, dto.TeachingAssignmentUpdateRequest{Term: &next, RequiredPeriods: 4})
	require.NoError(t, err)
	require.NotNil(t, assignment.Term)
	assert.Equal(t, "2025-T2", *assignment.Term)
	assert.Equal(t, 4, assignment.RequiredPeriods)
	require.NotNil(t, repo.updated)
	assert.Equal(t, int64(10), repo.updated.SubjectID, "identity fields stay untouched")
}

func TestAssignmentServiceUpdateRejectsDuplicateTuple(t *testing.T) {
	term := "2025-T1"
	repo := &stubAssignmentRepo{
		byID:     map[int64]models.TeachingAssignment{5: {ID: 5, SubjectID: 10, TeacherID: 1, GroupID: 30, Term: &term}},
		conflict: true,
	}
	svc := NewAssignmentService(repo, nil, nil, nil, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), 5, dto.TeachingAssignmentUpdateRequest{Term: nil, RequiredPeriods: 2})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.updated)
}

func TestAssignmentServiceUpdateNotFound(t *testing.T) {
	svc := NewAssignmentService(&stubAssignmentRepo{}, nil, nil, nil, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), 9, dto.TeachingAssignmentUpdateRequest{RequiredPeriods: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
