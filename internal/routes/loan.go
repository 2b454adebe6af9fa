package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"quipus-system/internal/controllers"
	"quipus-system/internal/services"
	"quipus-system/pkg/middleware"
)

func runLoanRouter(secureGroup *echo.Group, loanService services.LoanServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	loanCtrl := controllers.NewLoanController(loanService, logger)

	loanGroup := secureGroup.Group("/loans")
	{
		loanGroup.GET("/active", loanCtrl.GetActiveLoans)
		loanGroup.GET("/history/:national_id", loanCtrl.GetStudentHistory)
		loanGroup.POST("", loanCtrl.OpenLoan, authMW.RequireAdministrator)
		loanGroup.POST("/close", loanCtrl.CloseLoan, authMW.RequireAdministrator)
	}
}
