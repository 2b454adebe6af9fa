package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quipus-system/internal/entities"
	apperrors "quipus-system/pkg/errors"
)

const deviceTable = "devices"
const deviceFields = "code, state, registered_at"

type DeviceRepositoryInterface interface {
	GetDevices(ctx context.Context) ([]entities.Device, error)
	GetAvailableDevices(ctx context.Context) ([]entities.Device, error)
	FindByCode(ctx context.Context, code string) (*entities.Device, error)
	CreateDevice(ctx context.Context, code string) (*entities.Device, error)
	UpdateState(ctx context.Context, code string, state string) error
	DeleteDevice(ctx context.Context, code string) error

	// Transactional variants used by the loan engine.
	FindByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*entities.Device, error)
	UpdateStateInTx(ctx context.Context, tx pgx.Tx, code string, state string) error
}

type DeviceRepository struct {
	storage *pgxpool.Pool
}

func NewDeviceRepository(storage *pgxpool.Pool) DeviceRepositoryInterface {
	return &DeviceRepository{storage: storage}
}

func scanDevice(row pgx.Row) (*entities.Device, error) {
	var d entities.Device
	if err := row.Scan(&d.Code, &d.State, &d.RegisteredAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeviceRepository) GetDevices(ctx context.Context) ([]entities.Device, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT "+deviceFields+" FROM "+deviceTable+" ORDER BY registered_at DESC, code")
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	devices := make([]entities.Device, 0)
	for rows.Next() {
		var d entities.Device
		if err := rows.Scan(&d.Code, &d.State, &d.RegisteredAt); err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (r *DeviceRepository) GetAvailableDevices(ctx context.Context) ([]entities.Device, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT "+deviceFields+" FROM "+deviceTable+" WHERE state = 'available' ORDER BY code")
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	devices := make([]entities.Device, 0)
	for rows.Next() {
		var d entities.Device
		if err := rows.Scan(&d.Code, &d.State, &d.RegisteredAt); err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (r *DeviceRepository) findByCode(ctx context.Context, q querier, code string, suffix string) (*entities.Device, error) {
	device, err := scanDevice(q.QueryRow(ctx,
		"SELECT "+deviceFields+" FROM "+deviceTable+" WHERE code = $1"+suffix, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("device not found")
		}
		return nil, apperrors.NewStorageError(err)
	}
	return device, nil
}

func (r *DeviceRepository) FindByCode(ctx context.Context, code string) (*entities.Device, error) {
	return r.findByCode(ctx, r.storage, code, "")
}

// FindByCodeForUpdate locks the device row for the rest of the enclosing
// transaction. Concurrent loan attempts on the same device serialize here.
func (r *DeviceRepository) FindByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*entities.Device, error) {
	return r.findByCode(ctx, tx, code, " FOR UPDATE")
}

func (r *DeviceRepository) CreateDevice(ctx context.Context, code string) (*entities.Device, error) {
	device, err := scanDevice(r.storage.QueryRow(ctx,
		"INSERT INTO "+deviceTable+" (code, state) VALUES ($1, 'available') RETURNING "+deviceFields, code))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("device code already exists")
		}
		return nil, apperrors.NewStorageError(err)
	}
	return device, nil
}

func (r *DeviceRepository) updateState(ctx context.Context, q querier, code string, state string) error {
	result, err := q.Exec(ctx,
		"UPDATE "+deviceTable+" SET state = $1 WHERE code = $2", state, code)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("device not found")
	}
	return nil
}

func (r *DeviceRepository) UpdateState(ctx context.Context, code string, state string) error {
	return r.updateState(ctx, r.storage, code, state)
}

func (r *DeviceRepository) UpdateStateInTx(ctx context.Context, tx pgx.Tx, code string, state string) error {
	return r.updateState(ctx, tx, code, state)
}

func (r *DeviceRepository) DeleteDevice(ctx context.Context, code string) error {
	result, err := r.storage.Exec(ctx,
		"DELETE FROM "+deviceTable+" WHERE code = $1", code)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("device not found")
	}
	return nil
}
