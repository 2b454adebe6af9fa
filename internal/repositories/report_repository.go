package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/entities"
	apperrors "quipus-system/pkg/errors"
)

type ReportRepositoryInterface interface {
	GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, error)
	GetLoanStats(ctx context.Context, overdueAfter time.Duration) (*dto.LoanStatsDTO, error)
	GetDashboardStats(ctx context.Context) (*dto.DashboardStatsDTO, error)
	GetRangeMetrics(ctx context.Context, from, to *time.Time) (*dto.RangeMetricsDTO, error)
	GetDistinctGrades(ctx context.Context) ([]string, error)
}

type ReportRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewReportRepository(storage *pgxpool.Pool, logger *zap.Logger) ReportRepositoryInterface {
	return &ReportRepository{storage: storage, logger: logger}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func applyRange(b sq.SelectBuilder, from, to *time.Time) sq.SelectBuilder {
	if from != nil {
		b = b.Where(sq.GtOrEq{"opened_at": *from})
	}
	if to != nil {
		b = b.Where(sq.LtOrEq{"opened_at": *to})
	}
	return b
}

// GetReport is the advanced filtered report: every loan row joined with
// the current device state.
func (r *ReportRepository) GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, error) {
	base := psql.Select(
		"l.id", "l.student_name", "l.national_id", "l.grade_section",
		"l.device_code", "d.state", "l.opened_at", "l.closed_at", "l.notes",
		"CASE WHEN l.closed_at IS NULL THEN 'pending' ELSE 'returned' END",
	).
		From("loans l").
		Join("devices d ON l.device_code = d.code")

	if filter.DateFrom != nil {
		base = base.Where(sq.GtOrEq{"l.opened_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		base = base.Where(sq.LtOrEq{"l.opened_at": *filter.DateTo})
	}
	switch filter.Status {
	case "pending":
		base = base.Where("l.closed_at IS NULL")
	case "returned":
		base = base.Where("l.closed_at IS NOT NULL")
	}
	if filter.Grade != "" {
		base = base.Where(sq.Eq{"l.grade_section": filter.Grade})
	}

	query, args, err := base.OrderBy("l.opened_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build report query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	items := make([]entities.ReportItem, 0)
	for rows.Next() {
		var item entities.ReportItem
		err := rows.Scan(
			&item.LoanID,
			&item.StudentName,
			&item.NationalID,
			&item.GradeSection,
			&item.DeviceCode,
			&item.DeviceState,
			&item.OpenedAt,
			&item.ClosedAt,
			&item.Notes,
			&item.LoanStatus,
		)
		if err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetLoanStats computes the quick counters in a single pass over the
// ledger with FILTER clauses.
func (r *ReportRepository) GetLoanStats(ctx context.Context, overdueAfter time.Duration) (*dto.LoanStatsDTO, error) {
	stats := &dto.LoanStatsDTO{}
	err := r.storage.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE closed_at IS NULL),
			COUNT(*) FILTER (WHERE opened_at::date = CURRENT_DATE),
			COUNT(*) FILTER (WHERE opened_at >= NOW() - INTERVAL '7 days'),
			COUNT(*) FILTER (WHERE closed_at IS NULL AND opened_at < NOW() - $1::interval)
		FROM loans`,
		overdueAfter.String(),
	).Scan(&stats.Active, &stats.Today, &stats.LastWeek, &stats.Overdue)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return stats, nil
}

func (r *ReportRepository) GetDashboardStats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	stats := &dto.DashboardStatsDTO{}
	err := r.storage.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM devices),
			(SELECT COUNT(*) FROM devices WHERE state = 'available'),
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM loans WHERE closed_at IS NULL),
			(SELECT COUNT(*) FROM loans WHERE opened_at::date = CURRENT_DATE)`,
	).Scan(
		&stats.TotalDevices,
		&stats.AvailableDevices,
		&stats.TotalStudents,
		&stats.ActiveLoans,
		&stats.LoansToday,
	)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return stats, nil
}

// GetRangeMetrics aggregates loan activity inside the optional range:
// totals, top-5 devices and students, per-day histogram, per-grade counts.
func (r *ReportRepository) GetRangeMetrics(ctx context.Context, from, to *time.Time) (*dto.RangeMetricsDTO, error) {
	metrics := &dto.RangeMetricsDTO{
		TopDevices:   make([]dto.TopDeviceDTO, 0),
		TopStudents:  make([]dto.TopStudentDTO, 0),
		LoansPerDay:  make([]dto.LoansPerDayDTO, 0),
		LoansByGrade: make([]dto.LoansPerGradeDTO, 0),
	}

	totalsQuery, totalsArgs, err := applyRange(psql.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE closed_at IS NULL)",
	).From("loans"), from, to).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build totals query: %w", err)
	}
	if err := r.storage.QueryRow(ctx, totalsQuery, totalsArgs...).Scan(&metrics.TotalLoans, &metrics.PendingLoans); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	topDevicesQuery, topDevicesArgs, err := applyRange(psql.Select(
		"device_code", "COUNT(*) AS total_loans",
	).From("loans"), from, to).
		GroupBy("device_code").
		OrderBy("total_loans DESC").
		Limit(5).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build top-devices query: %w", err)
	}
	rows, err := r.storage.Query(ctx, topDevicesQuery, topDevicesArgs...)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	for rows.Next() {
		var item dto.TopDeviceDTO
		if err := rows.Scan(&item.DeviceCode, &item.TotalLoans); err != nil {
			rows.Close()
			return nil, apperrors.NewStorageError(err)
		}
		metrics.TopDevices = append(metrics.TopDevices, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	topStudentsQuery, topStudentsArgs, err := applyRange(psql.Select(
		"MAX(student_name)", "national_id", "MAX(grade_section)", "COUNT(*) AS total_loans",
	).From("loans"), from, to).
		GroupBy("national_id").
		OrderBy("total_loans DESC").
		Limit(5).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build top-students query: %w", err)
	}
	rows, err = r.storage.Query(ctx, topStudentsQuery, topStudentsArgs...)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	for rows.Next() {
		var item dto.TopStudentDTO
		if err := rows.Scan(&item.StudentName, &item.NationalID, &item.GradeSection, &item.TotalLoans); err != nil {
			rows.Close()
			return nil, apperrors.NewStorageError(err)
		}
		metrics.TopStudents = append(metrics.TopStudents, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	perDayQuery, perDayArgs, err := applyRange(psql.Select(
		"opened_at::date AS day", "COUNT(*)",
	).From("loans"), from, to).
		GroupBy("day").
		OrderBy("day").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build per-day query: %w", err)
	}
	rows, err = r.storage.Query(ctx, perDayQuery, perDayArgs...)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	for rows.Next() {
		var day time.Time
		var item dto.LoansPerDayDTO
		if err := rows.Scan(&day, &item.Count); err != nil {
			rows.Close()
			return nil, apperrors.NewStorageError(err)
		}
		item.Date = day.Format("2006-01-02")
		metrics.LoansPerDay = append(metrics.LoansPerDay, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	perGradeQuery, perGradeArgs, err := applyRange(psql.Select(
		"grade_section", "COUNT(*) AS total_loans",
	).From("loans"), from, to).
		GroupBy("grade_section").
		OrderBy("total_loans DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build per-grade query: %w", err)
	}
	rows, err = r.storage.Query(ctx, perGradeQuery, perGradeArgs...)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	for rows.Next() {
		var item dto.LoansPerGradeDTO
		if err := rows.Scan(&item.GradeSection, &item.TotalLoans); err != nil {
			rows.Close()
			return nil, apperrors.NewStorageError(err)
		}
		metrics.LoansByGrade = append(metrics.LoansByGrade, item)
	}
	rows.Close()
	return metrics, rows.Err()
}

func (r *ReportRepository) GetDistinctGrades(ctx context.Context) ([]string, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT DISTINCT grade_section FROM loans ORDER BY grade_section")
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	grades := make([]string, 0)
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}
