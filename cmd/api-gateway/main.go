package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/timetable-solve-api/api/swagger"
	"github.com/noah-isme/timetable-solve-api/internal/handler"
	"github.com/noah-isme/timetable-solve-api/internal/middleware"
	"github.com/noah-isme/timetable-solve-api/internal/repository"
	"github.com/noah-isme/timetable-solve-api/internal/service"
	"github.com/noah-isme/timetable-solve-api/internal/solver"
	"github.com/noah-isme/timetable-solve-api/pkg/cache"
	"github.com/noah-isme/timetable-solve-api/pkg/config"
	"github.com/noah-isme/timetable-solve-api/pkg/database"
	"github.com/noah-isme/timetable-solve-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-solve-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-solve-api/pkg/middleware/requestid"
)

// @title Timetable Solve API
// @version 0.1.0
// @description Gateway orchestrating timetable solves against an external CP-SAT solver
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	parallelRepo := repository.NewGroupParallelRepository(db)
	timeslotRepo := repository.NewTimeslotRepository(db)
	assignmentRepo := repository.NewTeachingAssignmentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	userRepo := repository.NewUserRepository(db)

	solverClient := solver.NewClient(cfg.Solver, logr)

	solveSvc := service.NewSolveService(
		teacherRepo, subjectRepo, roomRepo, groupRepo, parallelRepo,
		timeslotRepo, assignmentRepo, scheduleRepo, solverClient,
		metricsSvc, cacheSvc, cfg.Solve.DefaultTerm, cfg.Solver.TimeLimitSec, logr,
	)
	scheduleSvc := service.NewScheduleService(
		scheduleRepo, teacherRepo, subjectRepo, roomRepo, groupRepo, timeslotRepo,
		cacheSvc, logr,
	)
	authSvc := service.NewAuthService(userRepo, validate, cfg.JWT, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, cacheSvc, validate, logr)
	groupSvc := service.NewGroupService(groupRepo, parallelRepo, validate, logr)
	timeslotSvc := service.NewTimeslotService(timeslotRepo, cacheSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, subjectRepo, teacherRepo, groupRepo, validate, logr)

	solveHandler := handler.NewSolveHandler(solveSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	groupHandler := handler.NewGroupHandler(groupSvc)
	timeslotHandler := handler.NewTimeslotHandler(timeslotSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	auth := middleware.JWT(authSvc)

	api.POST("/auth/login", authHandler.Login)

	api.POST("/solve", auth, solveHandler.Solve)

	api.GET("/schedules", scheduleHandler.List)
	api.GET("/schedules/:id", scheduleHandler.Get)
	api.GET("/schedules/:id/export", scheduleHandler.Export)

	api.GET("/teachers", teacherHandler.List)
	api.GET("/teachers/:id", teacherHandler.Get)
	api.POST("/teachers", auth, teacherHandler.Create)
	api.PUT("/teachers/:id", auth, teacherHandler.Update)
	api.DELETE("/teachers/:id", auth, teacherHandler.Delete)

	api.GET("/subjects", subjectHandler.List)
	api.GET("/subjects/:id", subjectHandler.Get)
	api.POST("/subjects", auth, subjectHandler.Create)
	api.PUT("/subjects/:id", auth, subjectHandler.Update)
	api.DELETE("/subjects/:id", auth, subjectHandler.Delete)

	api.GET("/rooms", roomHandler.List)
	api.GET("/rooms/:id", roomHandler.Get)
	api.POST("/rooms", auth, roomHandler.Create)
	api.PUT("/rooms/:id", auth, roomHandler.Update)
	api.DELETE("/rooms/:id", auth, roomHandler.Delete)

	// Parallel-edge routes are registered before /groups/:id so gin does not
	// treat "parallels" as a group id.
	api.GET("/groups/parallels", groupHandler.ListParallels)
	api.POST("/groups/parallels", auth, groupHandler.CreateParallel)
	api.DELETE("/groups/parallels/:id", auth, groupHandler.DeleteParallel)

	api.GET("/groups", groupHandler.List)
	api.GET("/groups/:id", groupHandler.Get)
	api.POST("/groups", auth, groupHandler.Create)
	api.PUT("/groups/:id", auth, groupHandler.Update)
	api.DELETE("/groups/:id", auth, groupHandler.Delete)

	api.GET("/timeslots", timeslotHandler.List)
	api.GET("/timeslots/:id", timeslotHandler.Get)
	api.POST("/timeslots", auth, timeslotHandler.Create)
	api.PUT("/timeslots/:id", auth, timeslotHandler.Update)
	api.DELETE("/timeslots/:id", auth, timeslotHandler.Delete)

	api.GET("/assignments", assignmentHandler.List)
	api.GET("/assignments/:id", assignmentHandler.Get)
	api.POST("/assignments", auth, assignmentHandler.Create)
	api.PUT("/assignments/:id", auth, assignmentHandler.Update)
	api.DELETE("/assignments/:id", auth, assignmentHandler.Delete)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
