package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
	"github.com/noah-isme/timetable-solve-api/internal/models"
	appErrors "github.com/noah-isme/timetable-solve-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.TeachingAssignmentFilter) ([]models.TeachingAssignment, int, error)
	FindByID(ctx context.Context, id int64) (*models.TeachingAssignment, error)
	ExistsByTuple(ctx context.Context, subjectID, teacherID, groupID int64, term *string, excludeID int64) (bool, error)
	Create(ctx context.Context, assignment *models.TeachingAssignment) error
	Update(ctx context.Context, assignment *models.TeachingAssignment) error
	Delete(ctx context.Context, id int64) error
}

// AssignmentService manages the teaching demand fed into solves.
type AssignmentService struct {
	repo      assignmentRepository
	subjects  subjectRepository
	teachers  teacherRepository
	groups    groupRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService creates a new assignment service.
func NewAssignmentService(repo assignmentRepository, subjects subjectRepository, teachers teacherRepository, groups groupRepository, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, subjects: subjects, teachers: teachers, groups: groups, validator: validate, logger: logger}
}

// List returns paginated assignments.
func (s *AssignmentService) List(ctx context.Context, filter models.TeachingAssignmentFilter) ([]models.TeachingAssignment, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return assignments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an assignment by identifier.
func (s *AssignmentService) Get(ctx context.Context, id int64) (*models.TeachingAssignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// Create adds a new assignment after checking that all referenced entities
// exist and the tuple is not already present.
func (s *AssignmentService) Create(ctx context.Context, req dto.TeachingAssignmentRequest) (*models.TeachingAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if _, err := s.groups.FindByID(ctx, req.GroupID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}

	exists, err := s.repo.ExistsByTuple(ctx, req.SubjectID, req.TeacherID, req.GroupID, req.Term, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment tuple")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "assignment already exists for this tuple")
	}

	assignment := &models.TeachingAssignment{
		SubjectID:       req.SubjectID,
		TeacherID:       req.TeacherID,
		GroupID:         req.GroupID,
		Term:            req.Term,
		RequiredPeriods: req.RequiredPeriods,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Update adjusts an assignment's term scope and required periods. The
// subject/teacher/group identity is immutable; replacing it is a delete plus
// create.
func (s *AssignmentService) Update(ctx context.Context, id int64, req dto.TeachingAssignmentUpdateRequest) (*models.TeachingAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByTuple(ctx, assignment.SubjectID, assignment.TeacherID, assignment.GroupID, req.Term, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment tuple")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "assignment already exists for this tuple")
	}

	assignment.Term = req.Term
	assignment.RequiredPeriods = req.RequiredPeriods
	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	return assignment, nil
}

// Delete removes an assignment by id.
func (s *AssignmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}
