package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/services"
	apperrors "quipus-system/pkg/errors"
	"quipus-system/pkg/utils"
)

type DeviceController struct {
	deviceService services.DeviceServiceInterface
	logger        *zap.Logger
}

func NewDeviceController(deviceService services.DeviceServiceInterface, logger *zap.Logger) *DeviceController {
	return &DeviceController{deviceService: deviceService, logger: logger}
}

func (c *DeviceController) GetDevices(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	if ctx.QueryParam("state") == "available" {
		res, err := c.deviceService.GetAvailableDevices(reqCtx)
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		return utils.SuccessResponse(ctx, res, "available devices", http.StatusOK)
	}

	res, err := c.deviceService.GetDevices(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "devices", http.StatusOK)
}

func (c *DeviceController) FindDevice(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	code := ctx.Param("code")

	res, err := c.deviceService.FindDevice(reqCtx, code)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "device found", http.StatusOK)
}

func (c *DeviceController) RegisterDevice(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.RegisterDeviceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.deviceService.RegisterDevice(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "device registered", http.StatusCreated)
}

func (c *DeviceController) SetDeviceState(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	code := ctx.Param("code")

	var payload dto.SetDeviceStateDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.deviceService.SetDeviceState(reqCtx, code, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "device state updated", http.StatusOK)
}

func (c *DeviceController) DeleteDevice(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	code := ctx.Param("code")

	if err := c.deviceService.DeleteDevice(reqCtx, code); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "device deleted", http.StatusOK)
}
