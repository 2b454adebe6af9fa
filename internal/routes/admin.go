package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"quipus-system/internal/controllers"
	"quipus-system/internal/services"
	"quipus-system/pkg/middleware"
)

func runAdminRouter(secureGroup *echo.Group, adminService services.AdminServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	adminCtrl := controllers.NewAdminController(adminService, logger)

	adminGroup := secureGroup.Group("/administrators", authMW.RequireAdministrator)
	{
		adminGroup.GET("", adminCtrl.GetAdministrators)
		adminGroup.GET("/:id", adminCtrl.FindAdministrator)
		adminGroup.POST("", adminCtrl.CreateAdministrator)
		adminGroup.PUT("/:id", adminCtrl.UpdateAdministrator)
		adminGroup.DELETE("/:id", adminCtrl.DeleteAdministrator)
	}
}
