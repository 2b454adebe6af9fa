package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"quipus-system/internal/repositories"
	"quipus-system/internal/services"
	"quipus-system/pkg/config"
	"quipus-system/pkg/middleware"
	"quipus-system/pkg/service"
)

// InitRouter wires repositories, services and controllers together and
// mounts every route group under /api.
func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, logger *zap.Logger, cfg *config.Config) {
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)
	txManager := repositories.NewTxManager(dbConn)

	deviceRepo := repositories.NewDeviceRepository(dbConn)
	studentRepo := repositories.NewStudentRepository(dbConn, logger)
	loanRepo := repositories.NewLoanRepository(dbConn, logger)
	gradeRepo := repositories.NewGradeConfigRepository(dbConn)
	adminRepo := repositories.NewAdminRepository(dbConn)
	reportRepo := repositories.NewReportRepository(dbConn, logger)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	loanService := services.NewLoanService(txManager, loanRepo, deviceRepo, studentRepo, cacheRepo, cfg.Loan, logger)
	deviceService := services.NewDeviceService(deviceRepo, loanRepo, logger)
	studentService := services.NewStudentService(txManager, studentRepo, loanRepo, gradeRepo, cfg.Loan, logger)
	adminService := services.NewAdminService(adminRepo, logger)
	authService := services.NewAuthService(adminRepo, jwtSvc, logger)
	reportService := services.NewReportService(reportRepo, cacheRepo, cfg.Loan, logger)

	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, authService, logger)
	runLoanRouter(secureGroup, loanService, logger, authMW)
	runDeviceRouter(secureGroup, deviceService, logger, authMW)
	runStudentRouter(secureGroup, studentService, logger, authMW)
	runAdminRouter(secureGroup, adminService, logger, authMW)
	runReportRouter(secureGroup, reportService, logger)
}
