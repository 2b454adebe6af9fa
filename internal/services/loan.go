package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/entities"
	"quipus-system/internal/repositories"
	"quipus-system/pkg/config"
	"quipus-system/pkg/constants"
	apperrors "quipus-system/pkg/errors"
)

type LoanServiceInterface interface {
	OpenLoan(ctx context.Context, payload dto.OpenLoanDTO) (*dto.LoanDTO, error)
	CloseLoan(ctx context.Context, payload dto.CloseLoanDTO) (*dto.LoanReturnDTO, error)
	GetActiveLoans(ctx context.Context) ([]dto.ActiveLoanDTO, error)
	HistoryByStudent(ctx context.Context, nationalID string) ([]dto.LoanHistoryItemDTO, error)
}

// LoanService is the consistency engine: the only writer that touches
// the devices table and the loan ledger together. Every multi-step
// check-then-write sequence runs inside one transaction with the student
// and device rows locked, in that order, so concurrent attempts on the
// same student or device serialize instead of racing.
type LoanService struct {
	txManager   repositories.TxManagerInterface
	loanRepo    repositories.LoanRepositoryInterface
	deviceRepo  repositories.DeviceRepositoryInterface
	studentRepo repositories.StudentRepositoryInterface
	cacheRepo   repositories.CacheRepositoryInterface
	loanCfg     config.LoanConfig
	logger      *zap.Logger
}

func NewLoanService(
	txManager repositories.TxManagerInterface,
	loanRepo repositories.LoanRepositoryInterface,
	deviceRepo repositories.DeviceRepositoryInterface,
	studentRepo repositories.StudentRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	loanCfg config.LoanConfig,
	logger *zap.Logger,
) LoanServiceInterface {
	return &LoanService{
		txManager:   txManager,
		loanRepo:    loanRepo,
		deviceRepo:  deviceRepo,
		studentRepo: studentRepo,
		cacheRepo:   cacheRepo,
		loanCfg:     loanCfg,
		logger:      logger,
	}
}

func (s *LoanService) OpenLoan(ctx context.Context, payload dto.OpenLoanDTO) (*dto.LoanDTO, error) {
	if payload.StudentID == 0 || payload.DeviceCode == "" {
		return nil, apperrors.NewValidationError("student and device are required")
	}

	var result *dto.LoanDTO
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		// Lock order is fixed (student first, device second) so two
		// engine calls can never deadlock against each other.
		student, err := s.studentRepo.FindActiveByIDForUpdate(ctx, tx, payload.StudentID)
		if err != nil {
			return err
		}

		device, err := s.deviceRepo.FindByCodeForUpdate(ctx, tx, payload.DeviceCode)
		if err != nil {
			return err
		}

		if device.State != constants.DeviceStateAvailable {
			return apperrors.NewConflictError("device unavailable: %s", device.State)
		}

		duplicate, err := s.loanRepo.ExistsOpenPairInTx(ctx, tx, student.NationalID, device.Code)
		if err != nil {
			return err
		}
		if duplicate {
			return apperrors.NewConflictError("duplicate active loan")
		}

		openCount, err := s.loanRepo.CountOpenByNationalIDInTx(ctx, tx, student.NationalID)
		if err != nil {
			return err
		}
		if openCount >= int64(s.loanCfg.MaxActiveLoansPerStudent) {
			return apperrors.NewConflictError("loan limit exceeded")
		}

		openedAt := time.Now()
		loan := entities.Loan{
			StudentName:  student.DisplayName(),
			NationalID:   student.NationalID,
			GradeSection: student.GradeSection(),
			DeviceCode:   device.Code,
			OpenedAt:     openedAt,
			Notes:        payload.Notes,
		}

		loanID, err := s.loanRepo.CreateLoanInTx(ctx, tx, loan)
		if err != nil {
			return err
		}

		if err := s.deviceRepo.UpdateStateInTx(ctx, tx, device.Code, constants.DeviceStateLoaned); err != nil {
			return err
		}

		result = &dto.LoanDTO{
			ID: loanID,
			Student: dto.LoanStudentDTO{
				Name:         loan.StudentName,
				NationalID:   loan.NationalID,
				GradeSection: loan.GradeSection,
			},
			Device:   dto.ShortDeviceDTO{Code: device.Code},
			OpenedAt: openedAt.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("OpenLoan rejected",
			zap.Uint64("studentId", payload.StudentID),
			zap.String("deviceCode", payload.DeviceCode),
			zap.Error(err),
		)
		return nil, err
	}

	s.invalidateStats(ctx)
	s.logger.Info("loan opened",
		zap.Uint64("loanId", result.ID),
		zap.String("deviceCode", payload.DeviceCode),
	)
	return result, nil
}

func (s *LoanService) CloseLoan(ctx context.Context, payload dto.CloseLoanDTO) (*dto.LoanReturnDTO, error) {
	if payload.LoanID == 0 {
		return nil, apperrors.NewValidationError("loan id is required")
	}

	var result *dto.LoanReturnDTO
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		loan, err := s.loanRepo.FindOpenByIDForUpdate(ctx, tx, payload.LoanID)
		if err != nil {
			return err
		}

		closedAt := time.Now()
		if err := s.loanRepo.CloseLoanInTx(ctx, tx, loan.ID, closedAt, payload.Notes); err != nil {
			return err
		}

		// The device goes back to available no matter what state an
		// administrator put it in while the loan was out.
		if err := s.deviceRepo.UpdateStateInTx(ctx, tx, loan.DeviceCode, constants.DeviceStateAvailable); err != nil {
			return err
		}

		result = &dto.LoanReturnDTO{
			ID:          loan.ID,
			StudentName: loan.StudentName,
			NationalID:  loan.NationalID,
			DeviceCode:  loan.DeviceCode,
			OpenedAt:    loan.OpenedAt.Format(time.RFC3339),
			ClosedAt:    closedAt.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("CloseLoan rejected", zap.Uint64("loanId", payload.LoanID), zap.Error(err))
		return nil, err
	}

	s.invalidateStats(ctx)
	s.logger.Info("loan closed",
		zap.Uint64("loanId", result.ID),
		zap.String("deviceCode", result.DeviceCode),
	)
	return result, nil
}

func (s *LoanService) GetActiveLoans(ctx context.Context) ([]dto.ActiveLoanDTO, error) {
	return s.loanRepo.GetActiveLoans(ctx)
}

func (s *LoanService) HistoryByStudent(ctx context.Context, nationalID string) ([]dto.LoanHistoryItemDTO, error) {
	if nationalID == "" {
		return nil, apperrors.NewValidationError("national id is required")
	}

	loans, err := s.loanRepo.HistoryByNationalID(ctx, nationalID)
	if err != nil {
		return nil, err
	}

	history := make([]dto.LoanHistoryItemDTO, 0, len(loans))
	for _, l := range loans {
		item := dto.LoanHistoryItemDTO{
			ID:         l.ID,
			DeviceCode: l.DeviceCode,
			OpenedAt:   l.OpenedAt.Format(time.RFC3339),
			Notes:      l.Notes,
			Status:     "returned",
		}
		if l.IsOpen() {
			item.Status = "pending"
		} else {
			item.ClosedAt.SetValid(l.ClosedAt.Time.Format(time.RFC3339))
		}
		history = append(history, item)
	}
	return history, nil
}

// invalidateStats drops the cached counters after a ledger mutation. A
// cache failure is logged and ignored, the counters just go stale for
// one TTL.
func (s *LoanService) invalidateStats(ctx context.Context) {
	if err := s.cacheRepo.Del(ctx, constants.CacheKeyLoanStats, constants.CacheKeyDashboardStats); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}
