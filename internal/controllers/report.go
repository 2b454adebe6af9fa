package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"quipus-system/internal/entities"
	"quipus-system/internal/services"
	"quipus-system/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

func (c *ReportController) GetReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	filter, format := c.parseFilters(ctx)
	c.logger.Debug("report requested", zap.Any("filter", filter), zap.String("format", format))

	data, err := c.reportService.GetReport(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if format == "xlsx" {
		return c.respondWithXLSX(ctx, data)
	}

	return utils.SuccessResponse(ctx, data, "report generated", http.StatusOK)
}

func (c *ReportController) GetLoanStats(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	res, err := c.reportService.GetLoanStats(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "loan stats", http.StatusOK)
}

func (c *ReportController) GetDashboardStats(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	res, err := c.reportService.GetDashboardStats(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "dashboard stats", http.StatusOK)
}

func (c *ReportController) GetRangeMetrics(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter, _ := c.parseFilters(ctx)

	res, err := c.reportService.GetRangeMetrics(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "range metrics", http.StatusOK)
}

func (c *ReportController) ListGrades(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	res, err := c.reportService.ListGrades(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "grades", http.StatusOK)
}

func (c *ReportController) parseFilters(ctx echo.Context) (entities.ReportFilter, string) {
	filter := entities.ReportFilter{
		Status: strings.ToLower(ctx.QueryParam("status")),
		Grade:  ctx.QueryParam("grade"),
	}
	format := strings.ToLower(ctx.QueryParam("format"))

	parseDate := func(raw string) *time.Time {
		if raw == "" {
			return nil
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return &t
		}
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return &t
		}
		return nil
	}

	filter.DateFrom = parseDate(ctx.QueryParam("date_from"))
	filter.DateTo = parseDate(ctx.QueryParam("date_to"))

	return filter, format
}

var reportHeaders = []string{
	"Loan ID", "Student", "National ID", "Grade", "Device", "Device state",
	"Opened at", "Closed at", "Status", "Notes",
}

func rowToSlice(item entities.ReportItem) []interface{} {
	dateFmt := "02.01.2006 15:04"
	var closedAt string
	if item.ClosedAt.Valid {
		closedAt = item.ClosedAt.Time.Format(dateFmt)
	}

	return []interface{}{
		item.LoanID, item.StudentName, item.NationalID, item.GradeSection,
		item.DeviceCode, item.DeviceState, item.OpenedAt.Format(dateFmt),
		closedAt, item.LoanStatus, item.Notes.String,
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, data []entities.ReportItem) error {
	f := excelize.NewFile()
	sheet := "Loan report"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &reportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "J1", style)

	for i, item := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := rowToSlice(item)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "B", "B", 30)
	f.SetColWidth(sheet, "C", "F", 16)
	f.SetColWidth(sheet, "G", "H", 18)
	f.SetColWidth(sheet, "J", "J", 40)

	fileName := fmt.Sprintf("loan_report_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
