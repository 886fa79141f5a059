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

type timeslotRepository interface {
	ListAll(ctx context.Context) ([]models.Timeslot, error)
	FindByID(ctx context.Context, id int64) (*models.Timeslot, error)
	ExistsByDayIndex(ctx context.Context, day string, index int, excludeID int64) (bool, error)
	Create(ctx context.Context, slot *models.Timeslot) error
	Update(ctx context.Context, slot *models.Timeslot) error
	Delete(ctx context.Context, id int64) error
}

// TimeslotService handles the shared timeslot grid. Mutations invalidate the
// cached timeslot projection used by solve-input assembly.
type TimeslotService struct {
	repo      timeslotRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeslotService creates a new timeslot service.
func NewTimeslotService(repo timeslotRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TimeslotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeslotService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns every timeslot in canonical order.
func (s *TimeslotService) List(ctx context.Context) ([]models.Timeslot, error) {
	slots, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timeslots")
	}
	return slots, nil
}

// Get returns a timeslot by identifier.
func (s *TimeslotService) Get(ctx context.Context, id int64) (*models.Timeslot, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timeslot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeslot")
	}
	return slot, nil
}

// Create adds a timeslot to the grid.
func (s *TimeslotService) Create(ctx context.Context, req dto.TimeslotRequest) (*models.Timeslot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timeslot payload")
	}

	taken, err := s.repo.ExistsByDayIndex(ctx, req.Day, req.Index, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check timeslot")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "timeslot already exists for this day and index")
	}

	slot := &models.Timeslot{Day: req.Day, Index: req.Index, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timeslot")
	}
	s.cache.Invalidate(ctx, cacheKeyTimeslots)
	return slot, nil
}

// Update rewrites a timeslot's position and times.
func (s *TimeslotService) Update(ctx context.Context, id int64, req dto.TimeslotRequest) (*models.Timeslot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timeslot payload")
	}

	slot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByDayIndex(ctx, req.Day, req.Index, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check timeslot")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "timeslot already exists for this day and index")
	}

	slot.Day = req.Day
	slot.Index = req.Index
	slot.StartTime = req.StartTime
	slot.EndTime = req.EndTime
	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timeslot")
	}
	s.cache.Invalidate(ctx, cacheKeyTimeslots)
	return slot, nil
}

// Delete removes a timeslot by id.
func (s *TimeslotService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timeslot")
	}
	s.cache.Invalidate(ctx, cacheKeyTimeslots)
	return nil
}
