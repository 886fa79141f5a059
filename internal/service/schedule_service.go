package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
	"github.com/noah-isme/timetable-solve-api/internal/models"
	appErrors "github.com/noah-isme/timetable-solve-api/pkg/errors"
	"github.com/noah-isme/timetable-solve-api/pkg/export"
)

// Export formats supported for a schedule download.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type scheduleRepo interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, id int64) (*models.Schedule, error)
	ListLessons(ctx context.Context, scheduleID int64) ([]models.Lesson, error)
}

type scheduleLookupRepos struct {
	teachers  solveTeacherRepo
	subjects  solveSubjectRepo
	rooms     solveRoomRepo
	groups    solveGroupRepo
	timeslots solveTimeslotRepo
}

// ScheduleService serves the read side of persisted schedules: listing,
// detail with lessons, and tabular exports.
type ScheduleService struct {
	repo    scheduleRepo
	lookups scheduleLookupRepos
	cache   *CacheService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(
	repo scheduleRepo,
	teachers solveTeacherRepo,
	subjects solveSubjectRepo,
	rooms solveRoomRepo,
	groups solveGroupRepo,
	timeslots solveTimeslotRepo,
	cache *CacheService,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		repo: repo,
		lookups: scheduleLookupRepos{
			teachers:  teachers,
			subjects:  subjects,
			rooms:     rooms,
			groups:    groups,
			timeslots: timeslots,
		},
		cache:  cache,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// List returns schedules newest first.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return schedules, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a schedule with its lessons in canonical timetable order.
func (s *ScheduleService) Get(ctx context.Context, id int64) (*dto.ScheduleDetail, error) {
	cacheKey := fmt.Sprintf("schedules:detail:%d", id)
	var detail dto.ScheduleDetail
	if s.cache.Get(ctx, cacheKey, &detail) {
		return &detail, nil
	}

	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	lessons, err := s.repo.ListLessons(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}

	detail = dto.ScheduleDetail{Schedule: *schedule, Lessons: lessons}
	s.cache.Set(ctx, cacheKey, detail)
	return &detail, nil
}

// Export renders a schedule's timetable in the requested format and returns
// the payload with its filename and content type.
func (s *ScheduleService) Export(ctx context.Context, id int64, format string) ([]byte, string, string, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", "", err
	}

	dataset, err := s.buildDataset(ctx, detail)
	if err != nil {
		return nil, "", "", err
	}

	switch format {
	case ExportFormatCSV, "":
		payload, err := s.csv.Render(*dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, fmt.Sprintf("schedule-%d.csv", id), "text/csv", nil
	case ExportFormatPDF:
		title := fmt.Sprintf("Timetable %s", detail.Schedule.Term)
		payload, err := s.pdf.Render(*dataset, title)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, fmt.Sprintf("schedule-%d.pdf", id), "application/pdf", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func (s *ScheduleService) buildDataset(ctx context.Context, detail *dto.ScheduleDetail) (*export.Dataset, error) {
	teachers, err := s.lookups.teachers.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	subjects, err := s.lookups.subjects.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	rooms, err := s.lookups.rooms.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	groups, err := s.lookups.groups.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load groups")
	}
	slots, err := s.lookups.timeslots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeslots")
	}

	teacherNames := make(map[int64]string, len(teachers))
	for _, t := range teachers {
		teacherNames[t.ID] = t.Name
	}
	subjectCodes := make(map[int64]string, len(subjects))
	for _, sub := range subjects {
		subjectCodes[sub.ID] = sub.Code
	}
	roomNames := make(map[int64]string, len(rooms))
	for _, r := range rooms {
		roomNames[r.ID] = r.Name
	}
	groupNames := make(map[int64]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}
	slotLabels := make(map[int64]string, len(slots))
	for _, slot := range slots {
		slotLabels[slot.ID] = fmt.Sprintf("%s %d (%s-%s)", slot.Day, slot.Index, slot.StartTime, slot.EndTime)
	}

	headers := []string{"Timeslot", "Group", "Subject", "Teacher", "Room"}
	rows := make([]map[string]string, 0, len(detail.Lessons))
	for _, lesson := range detail.Lessons {
		rows = append(rows, map[string]string{
			"Timeslot": labelOr(slotLabels, lesson.TimeslotID),
			"Group":    labelOr(groupNames, lesson.GroupID),
			"Subject":  labelOr(subjectCodes, lesson.SubjectID),
			"Teacher":  labelOr(teacherNames, lesson.TeacherID),
			"Room":     labelOr(roomNames, lesson.RoomID),
		})
	}

	return &export.Dataset{Headers: headers, Rows: rows}, nil
}

func labelOr(labels map[int64]string, id int64) string {
	if label, ok := labels[id]; ok {
		return label
	}
	return strconv.FormatInt(id, 10)
}
