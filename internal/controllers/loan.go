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

type LoanController struct {
	loanService services.LoanServiceInterface
	logger      *zap.Logger
}

func NewLoanController(loanService services.LoanServiceInterface, logger *zap.Logger) *LoanController {
	return &LoanController{loanService: loanService, logger: logger}
}

func (c *LoanController) OpenLoan(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.OpenLoanDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.loanService.OpenLoan(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "loan opened", http.StatusCreated)
}

func (c *LoanController) CloseLoan(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CloseLoanDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.loanService.CloseLoan(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "loan closed", http.StatusOK)
}

func (c *LoanController) GetActiveLoans(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	res, err := c.loanService.GetActiveLoans(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "active loans", http.StatusOK)
}

func (c *LoanController) GetStudentHistory(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	nationalID := ctx.Param("national_id")

	res, err := c.loanService.HistoryByStudent(reqCtx, nationalID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "loan history", http.StatusOK)
}
