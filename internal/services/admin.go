package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/entities"
	"quipus-system/internal/repositories"
	"quipus-system/pkg/constants"
	apperrors "quipus-system/pkg/errors"
	"quipus-system/pkg/utils"
)

type AdminServiceInterface interface {
	GetAdministrators(ctx context.Context) ([]dto.AdministratorDTO, error)
	FindAdministrator(ctx context.Context, id uint64) (*dto.AdministratorDTO, error)
	CreateAdministrator(ctx context.Context, payload dto.CreateAdministratorDTO) (*dto.AdministratorDTO, error)
	UpdateAdministrator(ctx context.Context, id uint64, payload dto.UpdateAdministratorDTO) error
	DeleteAdministrator(ctx context.Context, id uint64, actorID uint64) error
}

type AdminService struct {
	adminRepo repositories.AdminRepositoryInterface
	logger    *zap.Logger
}

func NewAdminService(adminRepo repositories.AdminRepositoryInterface, logger *zap.Logger) AdminServiceInterface {
	return &AdminService{adminRepo: adminRepo, logger: logger}
}

func toAdministratorDTO(a entities.Administrator) dto.AdministratorDTO {
	return dto.AdministratorDTO{
		ID:        a.ID,
		Name:      a.Name,
		Username:  a.Username,
		Role:      a.Role,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

func (s *AdminService) GetAdministrators(ctx context.Context) ([]dto.AdministratorDTO, error) {
	admins, err := s.adminRepo.GetAdministrators(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AdministratorDTO, 0, len(admins))
	for _, admin := range admins {
		result = append(result, toAdministratorDTO(admin))
	}
	return result, nil
}

func (s *AdminService) FindAdministrator(ctx context.Context, id uint64) (*dto.AdministratorDTO, error) {
	admin, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toAdministratorDTO(*admin)
	return &result, nil
}

func (s *AdminService) CreateAdministrator(ctx context.Context, payload dto.CreateAdministratorDTO) (*dto.AdministratorDTO, error) {
	taken, err := s.adminRepo.ExistsByUsername(ctx, payload.Username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflictError("username already taken")
	}

	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	admin := entities.Administrator{
		Name:         payload.Name,
		Username:     payload.Username,
		Role:         payload.Role,
		PasswordHash: hash,
	}

	id, err := s.adminRepo.CreateAdministrator(ctx, admin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("administrator created", zap.Uint64("id", id), zap.String("username", payload.Username))

	admin.ID = id
	admin.CreatedAt = time.Now()
	result := toAdministratorDTO(admin)
	return &result, nil
}

func (s *AdminService) UpdateAdministrator(ctx context.Context, id uint64, payload dto.UpdateAdministratorDTO) error {
	admin, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if payload.Name != nil {
		admin.Name = *payload.Name
	}
	if payload.Username != nil && *payload.Username != admin.Username {
		taken, err := s.adminRepo.ExistsByUsername(ctx, *payload.Username, id)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.NewConflictError("username already taken")
		}
		admin.Username = *payload.Username
	}
	if payload.Role != nil && *payload.Role != admin.Role {
		// Demoting the last full administrator would lock everyone out.
		if admin.Role == constants.RoleAdministrator && *payload.Role != constants.RoleAdministrator {
			remaining, err := s.adminRepo.CountAdministratorRoleExcluding(ctx, id)
			if err != nil {
				return err
			}
			if remaining == 0 {
				return apperrors.NewConflictError("cannot demote the last administrator")
			}
		}
		admin.Role = *payload.Role
	}
	if payload.Password != nil {
		hash, err := utils.HashPassword(*payload.Password)
		if err != nil {
			return apperrors.NewStorageError(err)
		}
		admin.PasswordHash = hash
	}

	return s.adminRepo.UpdateAdministrator(ctx, *admin)
}

func (s *AdminService) DeleteAdministrator(ctx context.Context, id uint64, actorID uint64) error {
	if id == actorID {
		return apperrors.NewConflictError("cannot delete your own account")
	}

	admin, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if admin.Role == constants.RoleAdministrator {
		remaining, err := s.adminRepo.CountAdministratorRoleExcluding(ctx, id)
		if err != nil {
			return err
		}
		if remaining == 0 {
			return apperrors.NewConflictError("cannot delete the last administrator")
		}
	}

	if err := s.adminRepo.DeleteAdministrator(ctx, id); err != nil {
		return err
	}

	s.logger.Info("administrator deleted", zap.Uint64("id", id), zap.Uint64("by", actorID))
	return nil
}
