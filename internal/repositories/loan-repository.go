package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/entities"
	apperrors "quipus-system/pkg/errors"
)

const loanTable = "loans"
const loanFields = "id, student_name, national_id, grade_section, device_code, opened_at, closed_at, notes"

type LoanRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.Loan, error)
	GetActiveLoans(ctx context.Context) ([]dto.ActiveLoanDTO, error)
	HistoryByNationalID(ctx context.Context, nationalID string) ([]entities.Loan, error)
	HasOpenLoanByDeviceCode(ctx context.Context, deviceCode string) (bool, error)
	HasOpenLoanByNationalID(ctx context.Context, nationalID string) (bool, error)

	// Transactional methods, called by the consistency engine only.
	CreateLoanInTx(ctx context.Context, tx pgx.Tx, loan entities.Loan) (uint64, error)
	FindOpenByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Loan, error)
	CloseLoanInTx(ctx context.Context, tx pgx.Tx, id uint64, closedAt time.Time, notes null.String) error
	ExistsOpenPairInTx(ctx context.Context, tx pgx.Tx, nationalID, deviceCode string) (bool, error)
	CountOpenByNationalIDInTx(ctx context.Context, tx pgx.Tx, nationalID string) (int64, error)
}

type LoanRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewLoanRepository(storage *pgxpool.Pool, logger *zap.Logger) LoanRepositoryInterface {
	return &LoanRepository{storage: storage, logger: logger}
}

func scanLoan(row pgx.Row) (*entities.Loan, error) {
	var l entities.Loan
	err := row.Scan(
		&l.ID,
		&l.StudentName,
		&l.NationalID,
		&l.GradeSection,
		&l.DeviceCode,
		&l.OpenedAt,
		&l.ClosedAt,
		&l.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepository) FindByID(ctx context.Context, id uint64) (*entities.Loan, error) {
	loan, err := scanLoan(r.storage.QueryRow(ctx,
		"SELECT "+loanFields+" FROM "+loanTable+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("loan not found")
		}
		return nil, apperrors.NewStorageError(err)
	}
	return loan, nil
}

func (r *LoanRepository) CreateLoanInTx(ctx context.Context, tx pgx.Tx, loan entities.Loan) (uint64, error) {
	var id uint64
	err := tx.QueryRow(ctx,
		`INSERT INTO `+loanTable+` (student_name, national_id, grade_section, device_code, opened_at, notes)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		loan.StudentName,
		loan.NationalID,
		loan.GradeSection,
		loan.DeviceCode,
		loan.OpenedAt,
		loan.Notes,
	).Scan(&id)
	if err != nil {
		return 0, apperrors.NewStorageError(err)
	}
	return id, nil
}

// FindOpenByIDForUpdate locks the open loan row; a closed or missing
// loan yields NotFound so a repeated close is rejected cleanly.
func (r *LoanRepository) FindOpenByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Loan, error) {
	loan, err := scanLoan(tx.QueryRow(ctx,
		"SELECT "+loanFields+" FROM "+loanTable+" WHERE id = $1 AND closed_at IS NULL FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("open loan not found")
		}
		return nil, apperrors.NewStorageError(err)
	}
	return loan, nil
}

func (r *LoanRepository) CloseLoanInTx(ctx context.Context, tx pgx.Tx, id uint64, closedAt time.Time, notes null.String) error {
	result, err := tx.Exec(ctx,
		`UPDATE `+loanTable+`
		 SET closed_at = $1, notes = COALESCE($2, notes)
		 WHERE id = $3 AND closed_at IS NULL`,
		closedAt, notes, id)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("open loan not found")
	}
	return nil
}

func (r *LoanRepository) ExistsOpenPairInTx(ctx context.Context, tx pgx.Tx, nationalID, deviceCode string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+loanTable+" WHERE national_id = $1 AND device_code = $2 AND closed_at IS NULL)",
		nationalID, deviceCode).Scan(&exists)
	if err != nil {
		return false, apperrors.NewStorageError(err)
	}
	return exists, nil
}

func (r *LoanRepository) CountOpenByNationalIDInTx(ctx context.Context, tx pgx.Tx, nationalID string) (int64, error) {
	var count int64
	err := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM "+loanTable+" WHERE national_id = $1 AND closed_at IS NULL",
		nationalID).Scan(&count)
	if err != nil {
		return 0, apperrors.NewStorageError(err)
	}
	return count, nil
}

func (r *LoanRepository) HasOpenLoanByDeviceCode(ctx context.Context, deviceCode string) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+loanTable+" WHERE device_code = $1 AND closed_at IS NULL)",
		deviceCode).Scan(&exists)
	if err != nil {
		return false, apperrors.NewStorageError(err)
	}
	return exists, nil
}

func (r *LoanRepository) HasOpenLoanByNationalID(ctx context.Context, nationalID string) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+loanTable+" WHERE national_id = $1 AND closed_at IS NULL)",
		nationalID).Scan(&exists)
	if err != nil {
		return false, apperrors.NewStorageError(err)
	}
	return exists, nil
}

// GetActiveLoans joins the ledger with the live student and device rows
// for the return screen: phone, current student status, device state and
// the number of days the loan has been out.
func (r *LoanRepository) GetActiveLoans(ctx context.Context) ([]dto.ActiveLoanDTO, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT l.id, l.student_name, l.national_id, l.grade_section, l.device_code,
		        l.opened_at, l.notes,
		        s.phone, s.status,
		        d.state,
		        EXTRACT(EPOCH FROM (NOW() - l.opened_at)) / 86400.0 AS days_elapsed
		 FROM `+loanTable+` l
		 LEFT JOIN students s ON l.national_id = s.national_id
		 LEFT JOIN devices d ON l.device_code = d.code
		 WHERE l.closed_at IS NULL
		 ORDER BY l.opened_at DESC`)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	loans := make([]dto.ActiveLoanDTO, 0)
	for rows.Next() {
		var item dto.ActiveLoanDTO
		var openedAt time.Time
		err := rows.Scan(
			&item.ID,
			&item.StudentName,
			&item.NationalID,
			&item.GradeSection,
			&item.DeviceCode,
			&openedAt,
			&item.Notes,
			&item.Phone,
			&item.StudentStatus,
			&item.DeviceState,
			&item.DaysElapsed,
		)
		if err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		item.OpenedAt = openedAt.Format(time.RFC3339)
		loans = append(loans, item)
	}
	return loans, rows.Err()
}

func (r *LoanRepository) HistoryByNationalID(ctx context.Context, nationalID string) ([]entities.Loan, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT "+loanFields+" FROM "+loanTable+" WHERE national_id = $1 ORDER BY opened_at DESC",
		nationalID)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	loans := make([]entities.Loan, 0)
	for rows.Next() {
		var l entities.Loan
		err := rows.Scan(
			&l.ID,
			&l.StudentName,
			&l.NationalID,
			&l.GradeSection,
			&l.DeviceCode,
			&l.OpenedAt,
			&l.ClosedAt,
			&l.Notes,
		)
		if err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
