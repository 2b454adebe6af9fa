package services

import (
	"context"

	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/repositories"
	apperrors "quipus-system/pkg/errors"
	"quipus-system/pkg/service"
	"quipus-system/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error)
	Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.TokenPairDTO, error)
}

type AuthService struct {
	adminRepo  repositories.AdminRepositoryInterface
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthService(
	adminRepo repositories.AdminRepositoryInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{adminRepo: adminRepo, jwtService: jwtService, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error) {
	admin, err := s.adminRepo.FindByUsername(ctx, payload.Username)
	if err != nil {
		// Do not reveal whether the username exists.
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := utils.ComparePasswords(admin.PasswordHash, payload.Password); err != nil {
		s.logger.Warn("failed login attempt", zap.String("username", payload.Username))
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.jwtService.GenerateTokens(admin.ID, admin.Role)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	s.logger.Info("administrator logged in", zap.Uint64("id", admin.ID))
	return &dto.TokenPairDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Admin:        toAdministratorDTO(*admin),
	}, nil
}

func (s *AuthService) Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtService.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	admin, err := s.adminRepo.FindByID(ctx, claims.AdminID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	// Role is re-read from storage so a refresh picks up demotions.
	accessToken, refreshToken, err := s.jwtService.GenerateTokens(admin.ID, admin.Role)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	return &dto.TokenPairDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Admin:        toAdministratorDTO(*admin),
	}, nil
}
