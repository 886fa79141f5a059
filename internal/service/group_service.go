package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
	"github.com/noah-isme/timetable-solve-api/internal/models"
	appErrors "github.com/noah-isme/timetable-solve-api/pkg/errors"
)

type groupRepository interface {
	List(ctx context.Context, filter models.GroupFilter) ([]models.Group, int, error)
	FindByID(ctx context.Context, id int64) (*models.Group, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id int64) error
}

type groupParallelRepository interface {
	ListByTerm(ctx context.Context, term string) ([]models.GroupParallel, error)
	Create(ctx context.Context, edge *models.GroupParallel) error
	Delete(ctx context.Context, id int64) error
}

// GroupService handles group reference data and the parallel-group relation.
type GroupService struct {
	repo      groupRepository
	parallels groupParallelRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGroupService creates a new group service.
func NewGroupService(repo groupRepository, parallels groupParallelRepository, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{repo: repo, parallels: parallels, validator: validate, logger: logger}
}

// List returns paginated groups.
func (s *GroupService) List(ctx context.Context, filter models.GroupFilter) ([]models.Group, *models.Pagination, error) {
	groups, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return groups, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a group by identifier.
func (s *GroupService) Get(ctx context.Context, id int64) (*models.Group, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return group, nil
}

// Create adds a new group ensuring name uniqueness.
func (s *GroupService) Create(ctx context.Context, req dto.GroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}

	req.Name = strings.TrimSpace(req.Name)

	exists, err := s.repo.ExistsByName(ctx, req.Name, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "group name already exists")
	}

	group := &models.Group{Name: req.Name, Dept: req.Dept, Level: req.Level, Size: req.Size}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}
	return group, nil
}

// Update modifies an existing group.
func (s *GroupService) Update(ctx context.Context, id int64, req dto.GroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}

	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "group name already exists")
	}

	group.Name = req.Name
	group.Dept = req.Dept
	group.Level = req.Level
	group.Size = req.Size

	if err := s.repo.Update(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update group")
	}
	return group, nil
}

// Delete removes a group by id.
func (s *GroupService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete group")
	}
	return nil
}

// ListParallels returns the stored parallel edges for a term.
func (s *GroupService) ListParallels(ctx context.Context, term string) ([]models.GroupParallel, error) {
	if term == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term is required")
	}
	edges, err := s.parallels.ListByTerm(ctx, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list parallel edges")
	}
	return edges, nil
}

// CreateParallel stores a parallel edge exactly as given. Both referenced
// groups must exist; self edges are allowed and stored as-is.
func (s *GroupService) CreateParallel(ctx context.Context, req dto.GroupParallelRequest) (*models.GroupParallel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parallel payload")
	}

	if _, err := s.Get(ctx, req.GroupAID); err != nil {
		return nil, err
	}
	if req.GroupBID != req.GroupAID {
		if _, err := s.Get(ctx, req.GroupBID); err != nil {
			return nil, err
		}
	}

	edge := &models.GroupParallel{Term: req.Term, GroupAID: req.GroupAID, GroupBID: req.GroupBID}
	if err := s.parallels.Create(ctx, edge); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create parallel edge")
	}
	return edge, nil
}

// DeleteParallel removes a parallel edge by id.
func (s *GroupService) DeleteParallel(ctx context.Context, id int64) error {
	if err := s.parallels.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete parallel edge")
	}
	return nil
}
