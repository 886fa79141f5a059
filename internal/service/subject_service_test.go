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

type stubSubjectRepo struct {
	subject   *models.Subject
	findErr   error
	exists    bool
	existsErr error
	created   *models.Subject
}

func (s *stubSubjectRepo) List(context.Context, models.SubjectFilter) ([]models.Subject, int, error) {
	return nil, 0, nil
}

func (s *stubSubjectRepo) FindByID(context.Context, int64) (*models.Subject, error) {
	return s.subject, s.findErr
}

func (s *stubSubjectRepo) ExistsByCode(context.Context, string, int64) (bool, error) {
	return s.exists, s.existsErr
}

func (s *stubSubjectRepo) Create(_ context.Context, subject *models.Subject) error {
	subject.ID = 11
	s.created = subject
	return nil
}

func (s *stubSubjectRepo) Update(context.Context, *models.Subject) error { return nil }
func (s *stubSubjectRepo) Delete(context.Context, int64) error           { return nil }

func TestSubjectServiceCreateNormalizesCode(t *testing.T) {
	repo := &stubSubjectRepo{}
	svc := NewSubjectService(repo, nil, zap.NewNop())

	subject, err := svc.Create(context.Background(), dto.SubjectRequest{Code: " math101 ", Name: "Calculus", PeriodsPerWeek: 3})
	require.NoError(t, err)
	assert.Equal(t, "MATH101", subject.Code)
	assert.Equal(t, int64(11), subject.ID)
}

func TestSubjectServiceCreateRejectsDuplicateCode(t *testing.T) {
	repo := &stubSubjectRepo{exists: true}
	svc := NewSubjectService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.SubjectRequest{Code: "MATH101", Name: "Calculus", PeriodsPerWeek: 3})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestSubjectServiceCreateValidatesPayload(t *testing.T) {
	svc := NewSubjectService(&stubSubjectRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.SubjectRequest{Code: "X", Name: "", PeriodsPerWeek: 0})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceGetNotFound(t *testing.T) {
	repo := &stubSubjectRepo{findErr: sql.ErrNoRows}
	svc := NewSubjectService(repo, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
