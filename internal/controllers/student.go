package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/services"
	apperrors "quipus-system/pkg/errors"
	"quipus-system/pkg/utils"
)

type StudentController struct {
	studentService services.StudentServiceInterface
	logger         *zap.Logger
}

func NewStudentController(studentService services.StudentServiceInterface, logger *zap.Logger) *StudentController {
	return &StudentController{studentService: studentService, logger: logger}
}

func parseIDParam(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "invalid id",
			err, map[string]interface{}{"param": ctx.Param("id")})
	}
	return id, nil
}

func (c *StudentController) GetStudents(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	if ctx.QueryParam("with_loans") == "true" {
		res, err := c.studentService.ListWithActiveLoanCounts(reqCtx)
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		return utils.SuccessResponse(ctx, res, "students with loan counts", http.StatusOK)
	}

	res, err := c.studentService.GetStudents(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "students", http.StatusOK)
}

func (c *StudentController) FindStudent(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.studentService.FindStudent(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "student found", http.StatusOK)
}

func (c *StudentController) SearchStudents(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	query := ctx.QueryParam("q")

	res, err := c.studentService.SearchStudents(reqCtx, query)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "search results", http.StatusOK)
}

func (c *StudentController) RegisterStudent(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.RegisterStudentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.studentService.RegisterStudent(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "student registered", http.StatusCreated)
}

func (c *StudentController) UpdateStudent(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateStudentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.studentService.UpdateStudent(reqCtx, id, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "student updated", http.StatusOK)
}

func (c *StudentController) DeleteStudent(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.studentService.DeleteStudent(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "student deleted", http.StatusOK)
}

func (c *StudentController) PromoteGrades(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	res, err := c.studentService.PromoteGrades(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "grades promoted", http.StatusOK)
}

func (c *StudentController) GetGradeConfig(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	res, err := c.studentService.ListGradeConfig(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "grade configuration", http.StatusOK)
}
