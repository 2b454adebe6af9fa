package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/repositories"
	"quipus-system/pkg/constants"
	apperrors "quipus-system/pkg/errors"
)

type DeviceServiceInterface interface {
	GetDevices(ctx context.Context) ([]dto.DeviceDTO, error)
	GetAvailableDevices(ctx context.Context) ([]dto.DeviceDTO, error)
	FindDevice(ctx context.Context, code string) (*dto.DeviceDTO, error)
	RegisterDevice(ctx context.Context, payload dto.RegisterDeviceDTO) (*dto.DeviceDTO, error)
	SetDeviceState(ctx context.Context, code string, payload dto.SetDeviceStateDTO) error
	DeleteDevice(ctx context.Context, code string) error
}

type DeviceService struct {
	deviceRepo repositories.DeviceRepositoryInterface
	loanRepo   repositories.LoanRepositoryInterface
	logger     *zap.Logger
}

func NewDeviceService(
	deviceRepo repositories.DeviceRepositoryInterface,
	loanRepo repositories.LoanRepositoryInterface,
	logger *zap.Logger,
) DeviceServiceInterface {
	return &DeviceService{
		deviceRepo: deviceRepo,
		loanRepo:   loanRepo,
		logger:     logger,
	}
}

func (s *DeviceService) GetDevices(ctx context.Context) ([]dto.DeviceDTO, error) {
	devices, err := s.deviceRepo.GetDevices(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.DeviceDTO, 0, len(devices))
	for _, d := range devices {
		result = append(result, dto.DeviceDTO{
			Code:         d.Code,
			State:        d.State,
			RegisteredAt: d.RegisteredAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

func (s *DeviceService) GetAvailableDevices(ctx context.Context) ([]dto.DeviceDTO, error) {
	devices, err := s.deviceRepo.GetAvailableDevices(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.DeviceDTO, 0, len(devices))
	for _, d := range devices {
		result = append(result, dto.DeviceDTO{
			Code:         d.Code,
			State:        d.State,
			RegisteredAt: d.RegisteredAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

func (s *DeviceService) FindDevice(ctx context.Context, code string) (*dto.DeviceDTO, error) {
	device, err := s.deviceRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return &dto.DeviceDTO{
		Code:         device.Code,
		State:        device.State,
		RegisteredAt: device.RegisteredAt.Format(time.RFC3339),
	}, nil
}

func (s *DeviceService) RegisterDevice(ctx context.Context, payload dto.RegisterDeviceDTO) (*dto.DeviceDTO, error) {
	if payload.Code == "" {
		return nil, apperrors.NewValidationError("device code is required")
	}

	if _, err := s.deviceRepo.FindByCode(ctx, payload.Code); err == nil {
		return nil, apperrors.NewConflictError("device code already exists")
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	device, err := s.deviceRepo.CreateDevice(ctx, payload.Code)
	if err != nil {
		return nil, err
	}

	s.logger.Info("device registered", zap.String("code", device.Code))
	return &dto.DeviceDTO{
		Code:         device.Code,
		State:        device.State,
		RegisteredAt: device.RegisteredAt.Format(time.RFC3339),
	}, nil
}

// SetDeviceState is the administrative override. Any of the four states
// may be set directly; only loan open/close transitions are reserved to
// the engine.
func (s *DeviceService) SetDeviceState(ctx context.Context, code string, payload dto.SetDeviceStateDTO) error {
	if !constants.IsValidDeviceState(payload.State) {
		return apperrors.NewValidationError("invalid device state: %s", payload.State)
	}

	if err := s.deviceRepo.UpdateState(ctx, code, payload.State); err != nil {
		return err
	}

	s.logger.Info("device state overridden",
		zap.String("code", code),
		zap.String("state", payload.State),
	)
	return nil
}

func (s *DeviceService) DeleteDevice(ctx context.Context, code string) error {
	onLoan, err := s.loanRepo.HasOpenLoanByDeviceCode(ctx, code)
	if err != nil {
		return err
	}
	if onLoan {
		return apperrors.NewConflictError("cannot delete a device with an open loan")
	}

	if err := s.deviceRepo.DeleteDevice(ctx, code); err != nil {
		return err
	}

	s.logger.Info("device deleted", zap.String("code", code))
	return nil
}
