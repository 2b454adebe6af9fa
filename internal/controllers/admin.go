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

type AdminController struct {
	adminService services.AdminServiceInterface
	logger       *zap.Logger
}

func NewAdminController(adminService services.AdminServiceInterface, logger *zap.Logger) *AdminController {
	return &AdminController{adminService: adminService, logger: logger}
}

func (c *AdminController) GetAdministrators(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	res, err := c.adminService.GetAdministrators(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "administrators", http.StatusOK)
}

func (c *AdminController) FindAdministrator(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.adminService.FindAdministrator(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "administrator found", http.StatusOK)
}

func (c *AdminController) CreateAdministrator(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateAdministratorDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.adminService.CreateAdministrator(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "administrator created", http.StatusCreated)
}

func (c *AdminController) UpdateAdministrator(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateAdministratorDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.adminService.UpdateAdministrator(reqCtx, id, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "administrator updated", http.StatusOK)
}

func (c *AdminController) DeleteAdministrator(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	actorID, err := utils.GetAdminIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.adminService.DeleteAdministrator(reqCtx, id, actorID); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "administrator deleted", http.StatusOK)
}
