package app

import (
	"database/sql"

	"go-school/internal/attendance"
	"go-school/internal/checkin"
	"go-school/internal/config"
	"go-school/internal/leave"
	"go-school/internal/messaging/kafka"
	"go-school/internal/metrics"
	"go-school/internal/middleware"
	"go-school/internal/rbac"
	"go-school/internal/rbac/infra"
	"go-school/internal/school"
	"go-school/internal/student"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type modules struct {
	db     *sql.DB
	gormDB *gorm.DB
	rdb    *redis.Client
	m      *metrics.Metrics
	cfg    config.App
	logger *zap.Logger
}

func registerModules(router *gin.Engine, mods modules) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(mods.gormDB)
	schoolRepo := school.NewRepository(mods.gormDB)
	studentRepo := student.NewRepository(mods.gormDB)
	attendanceRepo := attendance.NewRepository(mods.gormDB)
	checkinRepo := checkin.NewRepository(mods.gormDB)
	leaveRepo := leave.NewRepository(mods.gormDB)
	outboxRepo := kafka.NewOutboxRepository(mods.db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(rbacRepo, enforcer, mods.logger)
	if err != nil {
		return err
	}

	// --- Services ---
	geocoder := school.NewPhotonGeocoder(mods.cfg.GeocoderURL, mods.cfg.GeocoderBBox)
	schoolService := school.NewService(mods.db, schoolRepo, mods.rdb, geocoder, school.CacheTTL{
		Config:  mods.cfg.SchoolCacheTTL,
		Geocode: mods.cfg.GeocoderCacheTTL,
	}, mods.logger)
	studentService := student.NewService(studentRepo, mods.logger)
	attendanceService := attendance.NewService(mods.db, attendanceRepo, studentRepo, schoolService, outboxRepo, mods.m, mods.logger)
	checkinService := checkin.NewService(mods.db, checkinRepo, schoolService, outboxRepo, mods.m, mods.logger)
	leaveService := leave.NewService(mods.db, leaveRepo, outboxRepo, mods.m, mods.logger)

	// --- Handlers ---
	schoolHandler := school.NewHandler(schoolService)
	studentHandler := student.NewHandler(studentService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	checkinHandler := checkin.NewHandler(checkinService)
	leaveHandler := leave.NewHandler(leaveService, mods.logger)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	authn := middleware.AuthMiddleware(mods.cfg.JWTSecret)
	perUser := middleware.RateLimitByUser(rate.Limit(mods.cfg.RateLimitRPS), mods.cfg.RateLimitBurst)

	api := router.Group("/api/v1")
	api.Use(perUser)
	{
		school.RegisterRoutes(api, schoolHandler, authn, rbacService)
		student.RegisterRoutes(api, studentHandler, authn, rbacService)
		attendance.RegisterRoutes(api, attendanceHandler, authn, rbacService, mods.rdb)
		checkin.RegisterRoutes(api, checkinHandler, authn, rbacService, mods.rdb)
		leave.RegisterRoutes(api, leaveHandler, authn, rbacService, mods.rdb)
		rbac.RegisterRoutes(api, rbacHandler, authn)
	}

	return nil
}
