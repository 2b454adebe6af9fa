package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/entities"
	"quipus-system/internal/repositories"
	"quipus-system/pkg/config"
	"quipus-system/pkg/constants"
)

type ReportServiceInterface interface {
	GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, error)
	GetLoanStats(ctx context.Context) (*dto.LoanStatsDTO, error)
	GetDashboardStats(ctx context.Context) (*dto.DashboardStatsDTO, error)
	GetRangeMetrics(ctx context.Context, filter entities.ReportFilter) (*dto.RangeMetricsDTO, error)
	ListGrades(ctx context.Context) ([]string, error)
}

type ReportService struct {
	reportRepo repositories.ReportRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	loanCfg    config.LoanConfig
	logger     *zap.Logger
}

func NewReportService(
	reportRepo repositories.ReportRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	loanCfg config.LoanConfig,
	logger *zap.Logger,
) ReportServiceInterface {
	return &ReportService{
		reportRepo: reportRepo,
		cacheRepo:  cacheRepo,
		loanCfg:    loanCfg,
		logger:     logger,
	}
}

func (s *ReportService) GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, error) {
	return s.reportRepo.GetReport(ctx, filter)
}

// GetLoanStats serves the loan counters from Redis when fresh; a miss
// or a broken cache falls through to Postgres.
func (s *ReportService) GetLoanStats(ctx context.Context) (*dto.LoanStatsDTO, error) {
	if cached, err := s.cacheRepo.Get(ctx, constants.CacheKeyLoanStats); err == nil {
		var stats dto.LoanStatsDTO
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.reportRepo.GetLoanStats(ctx, s.loanCfg.OverdueAfter)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.cacheRepo.Set(ctx, constants.CacheKeyLoanStats, payload, s.loanCfg.StatsCacheTTL); err != nil {
			s.logger.Warn("failed to cache loan stats", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *ReportService) GetDashboardStats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	if cached, err := s.cacheRepo.Get(ctx, constants.CacheKeyDashboardStats); err == nil {
		var stats dto.DashboardStatsDTO
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.reportRepo.GetDashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.cacheRepo.Set(ctx, constants.CacheKeyDashboardStats, payload, s.loanCfg.StatsCacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *ReportService) GetRangeMetrics(ctx context.Context, filter entities.ReportFilter) (*dto.RangeMetricsDTO, error) {
	return s.reportRepo.GetRangeMetrics(ctx, filter.DateFrom, filter.DateTo)
}

func (s *ReportService) ListGrades(ctx context.Context) ([]string, error) {
	return s.reportRepo.GetDistinctGrades(ctx)
}
