package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"quipus-system/internal/controllers"
	"quipus-system/internal/services"
	"quipus-system/pkg/middleware"
)

func runDeviceRouter(secureGroup *echo.Group, deviceService services.DeviceServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	deviceCtrl := controllers.NewDeviceController(deviceService, logger)

	deviceGroup := secureGroup.Group("/devices")
	{
		deviceGroup.GET("", deviceCtrl.GetDevices)
		deviceGroup.GET("/:code", deviceCtrl.FindDevice)
		deviceGroup.POST("", deviceCtrl.RegisterDevice, authMW.RequireAdministrator)
		deviceGroup.PUT("/:code/state", deviceCtrl.SetDeviceState, authMW.RequireAdministrator)
		deviceGroup.DELETE("/:code", deviceCtrl.DeleteDevice, authMW.RequireAdministrator)
	}
}
