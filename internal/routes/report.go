package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"quipus-system/internal/controllers"
	"quipus-system/internal/services"
)

func runReportRouter(secureGroup *echo.Group, reportService services.ReportServiceInterface, logger *zap.Logger) {
	reportCtrl := controllers.NewReportController(reportService, logger)

	reportGroup := secureGroup.Group("/reports")
	{
		reportGroup.GET("", reportCtrl.GetReport)
		reportGroup.GET("/stats", reportCtrl.GetLoanStats)
		reportGroup.GET("/dashboard", reportCtrl.GetDashboardStats)
		reportGroup.GET("/metrics", reportCtrl.GetRangeMetrics)
		reportGroup.GET("/grades", reportCtrl.ListGrades)
	}
}
