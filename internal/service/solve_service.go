package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/timetable-solve-api/internal/dto"
	"github.com/noah-isme/timetable-solve-api/internal/models"
	appErrors "github.com/noah-isme/timetable-solve-api/pkg/errors"
)

// Parallel handling policies accepted from solve overrides.
const (
	ParallelPolicyBlock = "BLOCK"
	ParallelPolicySoft  = "SOFT"
)

// Cache keys for the slow-changing input projections.
const (
	cacheKeyRooms     = "projections:rooms"
	cacheKeyTimeslots = "projections:timeslots"
)

type solveTeacherRepo interface {
	All(ctx context.Context) ([]models.Teacher, error)
}

type solveSubjectRepo interface {
	All(ctx context.Context) ([]models.Subject, error)
}

type solveRoomRepo interface {
	All(ctx context.Context) ([]models.Room, error)
}

type solveGroupRepo interface {
	All(ctx context.Context) ([]models.Group, error)
}

type solveParallelRepo interface {
	ListByTerm(ctx context.Context, term string) ([]models.GroupParallel, error)
}

type solveTimeslotRepo interface {
	ListAll(ctx context.Context) ([]models.Timeslot, error)
}

type solveAssignmentRepo interface {
	ListForTerm(ctx context.Context, term string) ([]models.TeachingAssignment, error)
}

type solveScheduleRepo interface {
	CreateWithLessons(ctx context.Context, schedule *models.Schedule, lessons []models.Lesson) (int, error)
}

// SolveGateway is the outbound seam to the constraint solver.
type SolveGateway interface {
	Solve(ctx context.Context, input *dto.SolveInput) (*dto.SolveResult, error)
}

// SolveService orchestrates a solve end to end: assemble the input document,
// call the solver, reconcile placements against assignments, and persist the
// schedule atomically.
type SolveService struct {
	teachers    solveTeacherRepo
	subjects    solveSubjectRepo
	rooms       solveRoomRepo
	groups      solveGroupRepo
	parallels   solveParallelRepo
	timeslots   solveTimeslotRepo
	assignments solveAssignmentRepo
	schedules   solveScheduleRepo
	gateway     SolveGateway
	metrics     *MetricsService
	cache       *CacheService
	defaultTerm string
	timeLimit   int
	logger      *zap.Logger
}

// NewSolveService constructs a SolveService.
func NewSolveService(
	teachers solveTeacherRepo,
	subjects solveSubjectRepo,
	rooms solveRoomRepo,
	groups solveGroupRepo,
	parallels solveParallelRepo,
	timeslots solveTimeslotRepo,
	assignments solveAssignmentRepo,
	schedules solveScheduleRepo,
	gateway SolveGateway,
	metrics *MetricsService,
	cache *CacheService,
	defaultTerm string,
	timeLimitSec int,
	logger *zap.Logger,
) *SolveService {
	if timeLimitSec <= 0 {
		timeLimitSec = 15
	}
	return &SolveService{
		teachers:    teachers,
		subjects:    subjects,
		rooms:       rooms,
		groups:      groups,
		parallels:   parallels,
		timeslots:   timeslots,
		assignments: assignments,
		schedules:   schedules,
		gateway:     gateway,
		metrics:     metrics,
		cache:       cache,
		defaultTerm: defaultTerm,
		timeLimit:   timeLimitSec,
		logger:      logger,
	}
}

// Solve runs the full pipeline for one request. Nothing is persisted unless
// the solver result survives reconciliation; a rejected result returns
// *models.SolveRejectedError carrying the solver's notes.
func (s *SolveService) Solve(ctx context.Context, req dto.SolveRequest) (*dto.SolveResponse, error) {
	start := time.Now()
	attemptID := uuid.NewString()

	term := req.Term
	if term == "" {
		term = s.defaultTerm
	}
	log := s.logger.With(zap.String("attempt_id", attemptID), zap.String("term", term))

	input, assignments, err := s.assembleInput(ctx, term, req.Config)
	if err != nil {
		s.metrics.ObserveSolve(SolveOutcomeFailed, time.Since(start), 0)
		return nil, err
	}
	log.Info("solve input assembled",
		zap.Int("teachers", len(input.Teachers)),
		zap.Int("subjects", len(input.Subjects)),
		zap.Int("groups", len(input.Groups)),
		zap.Int("timeslots", len(input.Timeslots)),
		zap.Int("assignments", len(input.Assignments)),
	)

	result, err := s.gateway.Solve(ctx, input)
	if err != nil {
		log.Warn("solver call failed", zap.Error(err))
		s.metrics.ObserveSolve(SolveOutcomeUnavailable, time.Since(start), 0)
		return nil, err
	}

	placements, ok := result.Placements()
	if !ok || len(placements) == 0 {
		log.Info("solver result rejected", zap.Strings("notes", result.Notes))
		s.metrics.ObserveSolve(SolveOutcomeRejected, time.Since(start), 0)
		return nil, &models.SolveRejectedError{Message: "solver produced no lessons", Notes: result.Notes}
	}

	lessons := reconcileLessons(placements, assignments, term)

	schedule := &models.Schedule{Term: term}
	if len(result.Notes) > 0 {
		if payload, marshalErr := json.Marshal(result.Notes); marshalErr == nil {
			schedule.Notes = types.JSONText(payload)
		}
	}

	count, err := s.schedules.CreateWithLessons(ctx, schedule, lessons)
	if err != nil {
		log.Error("schedule persist failed", zap.Error(err))
		s.metrics.ObserveSolve(SolveOutcomeFailed, time.Since(start), 0)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist schedule")
	}

	log.Info("schedule persisted",
		zap.Int64("schedule_id", schedule.ID),
		zap.Int("lessons", count),
		zap.Duration("elapsed", time.Since(start)),
	)
	s.metrics.ObserveSolve(SolveOutcomePersisted, time.Since(start), count)

	return &dto.SolveResponse{
		ScheduleID:     schedule.ID,
		Term:           term,
		LessonCount:    count,
		ObjectiveScore: result.ObjectiveScore,
		Notes:          result.Notes,
	}, nil
}

// assembleInput loads the term's projections concurrently and builds the
// solver input document plus the assignment list used for reconciliation.
func (s *SolveService) assembleInput(ctx context.Context, term string, overrides *dto.SolverOverrides) (*dto.SolveInput, []models.TeachingAssignment, error) {
	var (
		teachers    []models.Teacher
		subjects    []models.Subject
		rooms       []models.Room
		groups      []models.Group
		edges       []models.GroupParallel
		slots       []models.Timeslot
		assignments []models.TeachingAssignment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { teachers, err = s.teachers.All(gctx); return })
	g.Go(func() (err error) { subjects, err = s.subjects.All(gctx); return })
	g.Go(func() (err error) { groups, err = s.groups.All(gctx); return })
	g.Go(func() (err error) { edges, err = s.parallels.ListByTerm(gctx, term); return })
	g.Go(func() (err error) { assignments, err = s.assignments.ListForTerm(gctx, term); return })
	// Rooms and timeslots change rarely within a term; both read through the
	// cache and fall back to the store on a miss.
	g.Go(func() (err error) {
		if s.cache.Get(gctx, cacheKeyRooms, &rooms) {
			return nil
		}
		if rooms, err = s.rooms.All(gctx); err == nil {
			s.cache.Set(gctx, cacheKeyRooms, rooms)
		}
		return
	})
	g.Go(func() (err error) {
		if s.cache.Get(gctx, cacheKeyTimeslots, &slots) {
			return nil
		}
		if slots, err = s.timeslots.ListAll(gctx); err == nil {
			s.cache.Set(gctx, cacheKeyTimeslots, slots)
		}
		return
	})
	if err := g.Wait(); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load solve input")
	}

	adjacency := buildParallelGroups(edges)

	input := &dto.SolveInput{
		Term:        term,
		Timeslots:   make([]dto.TimeslotInput, 0, len(slots)),
		Rooms:       make([]dto.RoomInput, 0, len(rooms)),
		Teachers:    make([]dto.TeacherInput, 0, len(teachers)),
		Subjects:    make([]dto.SubjectInput, 0, len(subjects)),
		Groups:      make([]dto.GroupInput, 0, len(groups)),
		Assignments: make([]dto.AssignmentInput, 0, len(assignments)),
		Config:      s.mergeConfig(overrides),
	}

	for _, slot := range slots {
		input.Timeslots = append(input.Timeslots, dto.TimeslotInput{
			ID: slot.ID, Day: slot.Day, Index: slot.Index, StartTime: slot.StartTime, EndTime: slot.EndTime,
		})
	}
	for _, room := range rooms {
		input.Rooms = append(input.Rooms, dto.RoomInput{ID: room.ID, Name: room.Name, Capacity: room.Capacity, RoomType: room.RoomType})
	}
	for _, teacher := range teachers {
		input.Teachers = append(input.Teachers, dto.TeacherInput{
			ID:              teacher.ID,
			Name:            teacher.Name,
			MaxHoursPerWeek: teacher.MaxHoursPerWeek,
			Unavailable:     ParseUnavailability(teacher.Unavailable),
		})
	}
	for _, subject := range subjects {
		input.Subjects = append(input.Subjects, dto.SubjectInput{
			ID: subject.ID, Code: subject.Code, Name: subject.Name, RequiresRoomType: subject.RequiresRoomType,
		})
	}
	for _, group := range groups {
		parallel := adjacency[group.ID]
		if parallel == nil {
			parallel = []int64{}
		}
		input.Groups = append(input.Groups, dto.GroupInput{
			ID: group.ID, Name: group.Name, Size: group.Size, ParallelWithIDs: parallel,
		})
	}
	for _, assignment := range assignments {
		input.Assignments = append(input.Assignments, dto.AssignmentInput{
			ID:              assignment.ID,
			SubjectID:       assignment.SubjectID,
			TeacherID:       assignment.TeacherID,
			GroupID:         assignment.GroupID,
			RequiredPeriods: assignment.RequiredPeriods,
		})
	}

	return input, assignments, nil
}

// mergeConfig layers explicit overrides on top of the defaults. Explicit
// zero values win over defaults; only absent fields fall through.
func (s *SolveService) mergeConfig(overrides *dto.SolverOverrides) dto.SolveConfig {
	cfg := dto.SolveConfig{
		SubjectPerDayLimit: 1,
		AvoidFirstPeriod:   true,
		AvoidLastPeriod:    true,
		AvoidIndices:       []int{},
		SolverTimeLimitSec: s.timeLimit,
		ParallelPolicy:     ParallelPolicyBlock,
	}
	if overrides == nil {
		return cfg
	}
	if overrides.SubjectPerDayLimit != nil {
		cfg.SubjectPerDayLimit = *overrides.SubjectPerDayLimit
	}
	if overrides.AvoidFirstPeriod != nil {
		cfg.AvoidFirstPeriod = *overrides.AvoidFirstPeriod
	}
	if overrides.AvoidLastPeriod != nil {
		cfg.AvoidLastPeriod = *overrides.AvoidLastPeriod
	}
	if overrides.AvoidIndices != nil {
		cfg.AvoidIndices = overrides.AvoidIndices
	}
	if overrides.SolverTimeLimitSec != nil && *overrides.SolverTimeLimitSec > 0 {
		cfg.SolverTimeLimitSec = *overrides.SolverTimeLimitSec
	}
	if overrides.RandomSeed != nil {
		cfg.RandomSeed = overrides.RandomSeed
	}
	if overrides.ParallelPolicy != nil && *overrides.ParallelPolicy != "" {
		cfg.ParallelPolicy = *overrides.ParallelPolicy
	}
	return cfg
}

// buildParallelGroups symmetrizes the stored directed edges into a deduped
// adjacency. Both endpoints of every row get the other as a partner; partner
// lists come out sorted for deterministic input documents.
func buildParallelGroups(edges []models.GroupParallel) map[int64][]int64 {
	sets := make(map[int64]map[int64]struct{})
	add := func(a, b int64) {
		set, ok := sets[a]
		if !ok {
			set = make(map[int64]struct{})
			sets[a] = set
		}
		set[b] = struct{}{}
	}
	for _, edge := range edges {
		add(edge.GroupAID, edge.GroupBID)
		add(edge.GroupBID, edge.GroupAID)
	}

	adjacency := make(map[int64][]int64, len(sets))
	for group, set := range sets {
		partners := make([]int64, 0, len(set))
		for id := range set {
			partners = append(partners, id)
		}
		sort.Slice(partners, func(i, j int) bool { return partners[i] < partners[j] })
		adjacency[group] = partners
	}
	return adjacency
}

// assignmentKey identifies an assignment tuple within one solve. All keys are
// registered under the request term, so global assignments resolve for
// whichever term the solve runs against.
func assignmentKey(subjectID, teacherID, groupID int64, term string) string {
	return fmt.Sprintf("%d:%d:%d:%s", subjectID, teacherID, groupID, term)
}

// reconcileLessons maps placements back to assignment ids. Placements with no
// matching assignment are kept with a nil assignment reference rather than
// dropped: the solver's output is authoritative for what was placed.
func reconcileLessons(placements []dto.LessonPlacement, assignments []models.TeachingAssignment, term string) []models.Lesson {
	index := make(map[string]int64, len(assignments))
	for _, assignment := range assignments {
		index[assignmentKey(assignment.SubjectID, assignment.TeacherID, assignment.GroupID, term)] = assignment.ID
	}

	lessons := make([]models.Lesson, 0, len(placements))
	for _, p := range placements {
		lesson := models.Lesson{
			SubjectID:  p.SubjectID,
			TeacherID:  p.TeacherID,
			GroupID:    p.GroupID,
			RoomID:     p.RoomID,
			TimeslotID: p.TimeslotID,
		}
		if id, ok := index[assignmentKey(p.SubjectID, p.TeacherID, p.GroupID, term)]; ok {
			lesson.AssignmentID = &id
		}
		lessons = append(lessons, lesson)
	}
	return lessons
}
