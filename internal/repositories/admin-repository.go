package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quipus-system/internal/entities"
	apperrors "quipus-system/pkg/errors"
)

const adminTable = "administrators"
const adminFields = "id, name, username, role, password_hash, created_at"

type AdminRepositoryInterface interface {
	GetAdministrators(ctx context.Context) ([]entities.Administrator, error)
	FindByID(ctx context.Context, id uint64) (*entities.Administrator, error)
	FindByUsername(ctx context.Context, username string) (*entities.Administrator, error)
	ExistsByUsername(ctx context.Context, username string, excludeID uint64) (bool, error)
	CountAdministratorRoleExcluding(ctx context.Context, excludeID uint64) (int64, error)
	CreateAdministrator(ctx context.Context, admin entities.Administrator) (uint64, error)
	UpdateAdministrator(ctx context.Context, admin entities.Administrator) error
	DeleteAdministrator(ctx context.Context, id uint64) error
}

type AdminRepository struct {
	storage *pgxpool.Pool
}

func NewAdminRepository(storage *pgxpool.Pool) AdminRepositoryInterface {
	return &AdminRepository{storage: storage}
}

func scanAdmin(row pgx.Row) (*entities.Administrator, error) {
	var a entities.Administrator
	err := row.Scan(&a.ID, &a.Name, &a.Username, &a.Role, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepository) GetAdministrators(ctx context.Context) ([]entities.Administrator, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT "+adminFields+" FROM "+adminTable+" ORDER BY created_at DESC")
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	admins := make([]entities.Administrator, 0)
	for rows.Next() {
		var a entities.Administrator
		if err := rows.Scan(&a.ID, &a.Name, &a.Username, &a.Role, &a.PasswordHash, &a.CreatedAt); err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *AdminRepository) FindByID(ctx context.Context, id uint64) (*entities.Administrator, error) {
	admin, err := scanAdmin(r.storage.QueryRow(ctx,
		"SELECT "+adminFields+" FROM "+adminTable+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("administrator not found")
		}
		return nil, apperrors.NewStorageError(err)
	}
	return admin, nil
}

func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*entities.Administrator, error) {
	admin, err := scanAdmin(r.storage.QueryRow(ctx,
		"SELECT "+adminFields+" FROM "+adminTable+" WHERE username = $1", username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("administrator not found")
		}
		return nil, apperrors.NewStorageError(err)
	}
	return admin, nil
}

func (r *AdminRepository) ExistsByUsername(ctx context.Context, username string, excludeID uint64) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+adminTable+" WHERE username = $1 AND id != $2)",
		username, excludeID).Scan(&exists)
	if err != nil {
		return false, apperrors.NewStorageError(err)
	}
	return exists, nil
}

// CountAdministratorRoleExcluding counts how many full administrators
// would remain if the given id were demoted or removed.
func (r *AdminRepository) CountAdministratorRoleExcluding(ctx context.Context, excludeID uint64) (int64, error) {
	var count int64
	err := r.storage.QueryRow(ctx,
		"SELECT COUNT(*) FROM "+adminTable+" WHERE role = 'administrator' AND id != $1",
		excludeID).Scan(&count)
	if err != nil {
		return 0, apperrors.NewStorageError(err)
	}
	return count, nil
}

func (r *AdminRepository) CreateAdministrator(ctx context.Context, admin entities.Administrator) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx,
		`INSERT INTO `+adminTable+` (name, username, role, password_hash)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		admin.Name, admin.Username, admin.Role, admin.PasswordHash).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.NewConflictError("username already taken")
		}
		return 0, apperrors.NewStorageError(err)
	}
	return id, nil
}

func (r *AdminRepository) UpdateAdministrator(ctx context.Context, admin entities.Administrator) error {
	result, err := r.storage.Exec(ctx,
		`UPDATE `+adminTable+`
		 SET name = $1, username = $2, role = $3, password_hash = $4
		 WHERE id = $5`,
		admin.Name, admin.Username, admin.Role, admin.PasswordHash, admin.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("username already taken")
		}
		return apperrors.NewStorageError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("administrator not found")
	}
	return nil
}

func (r *AdminRepository) DeleteAdministrator(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, "DELETE FROM "+adminTable+" WHERE id = $1", id)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("administrator not found")
	}
	return nil
}
