package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/entities"
	apperrors "quipus-system/pkg/errors"
)

const studentTable = "students"
const studentFields = "id, first_names, last_name_paternal, last_name_maternal, national_id, grade, section, phone, status"

type StudentRepositoryInterface interface {
	GetStudents(ctx context.Context) ([]entities.Student, error)
	FindByID(ctx context.Context, id uint64) (*entities.Student, error)
	FindByNationalID(ctx context.Context, nationalID string) (*entities.Student, error)
	ExistsByNationalID(ctx context.Context, nationalID string, excludeID uint64) (bool, error)
	CreateStudent(ctx context.Context, student entities.Student) (uint64, error)
	UpdateStudent(ctx context.Context, student entities.Student) error
	DeleteStudent(ctx context.Context, id uint64) error
	SearchActive(ctx context.Context, query string, limit int) ([]entities.Student, error)
	ListWithActiveLoanCounts(ctx context.Context) ([]dto.StudentLoanCountDTO, error)

	// Transactional variants used by the loan engine and the promotion batch.
	FindActiveByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Student, error)
	PromoteGradeInTx(ctx context.Context, tx pgx.Tx, fromGrade, toGrade string) (int64, error)
	DeactivateGradeInTx(ctx context.Context, tx pgx.Tx, grade string) (int64, error)
}

type StudentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewStudentRepository(storage *pgxpool.Pool, logger *zap.Logger) StudentRepositoryInterface {
	return &StudentRepository{storage: storage, logger: logger}
}

func scanStudent(row pgx.Row) (*entities.Student, error) {
	var s entities.Student
	err := row.Scan(
		&s.ID,
		&s.FirstNames,
		&s.LastNamePaternal,
		&s.LastNameMaternal,
		&s.NationalID,
		&s.Grade,
		&s.Section,
		&s.Phone,
		&s.Status,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepository) GetStudents(ctx context.Context) ([]entities.Student, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT "+studentFields+" FROM "+studentTable+" ORDER BY last_name_paternal, last_name_maternal, first_names")
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

func collectStudents(rows pgx.Rows) ([]entities.Student, error) {
	students := make([]entities.Student, 0)
	for rows.Next() {
		var s entities.Student
		err := rows.Scan(
			&s.ID,
			&s.FirstNames,
			&s.LastNamePaternal,
			&s.LastNameMaternal,
			&s.NationalID,
			&s.Grade,
			&s.Section,
			&s.Phone,
			&s.Status,
		)
		if err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *StudentRepository) FindByID(ctx context.Context, id uint64) (*entities.Student, error) {
	student, err := scanStudent(r.storage.QueryRow(ctx,
		"SELECT "+studentFields+" FROM "+studentTable+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("student not found")
		}
		return nil, apperrors.NewStorageError(err)
	}
	return student, nil
}

func (r *StudentRepository) FindByNationalID(ctx context.Context, nationalID string) (*entities.Student, error) {
	student, err := scanStudent(r.storage.QueryRow(ctx,
		"SELECT "+studentFields+" FROM "+studentTable+" WHERE national_id = $1", nationalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("student not found")
		}
		return nil, apperrors.NewStorageError(err)
	}
	return student, nil
}

// FindActiveByIDForUpdate locks the student row so the per-student
// open-loan count cannot change between the check and the insert.
func (r *StudentRepository) FindActiveByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Student, error) {
	student, err := scanStudent(tx.QueryRow(ctx,
		"SELECT "+studentFields+" FROM "+studentTable+" WHERE id = $1 AND status = 'active' FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotEligibleError("student not found or inactive")
		}
		return nil, apperrors.NewStorageError(err)
	}
	return student, nil
}

func (r *StudentRepository) ExistsByNationalID(ctx context.Context, nationalID string, excludeID uint64) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+studentTable+" WHERE national_id = $1 AND id != $2)",
		nationalID, excludeID).Scan(&exists)
	if err != nil {
		return false, apperrors.NewStorageError(err)
	}
	return exists, nil
}

func (r *StudentRepository) CreateStudent(ctx context.Context, student entities.Student) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx,
		`INSERT INTO `+studentTable+` (first_names, last_name_paternal, last_name_maternal, national_id, grade, section, phone, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 'active') RETURNING id`,
		student.FirstNames,
		student.LastNamePaternal,
		student.LastNameMaternal,
		student.NationalID,
		student.Grade,
		student.Section,
		student.Phone,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.NewConflictError("national id already registered")
		}
		return 0, apperrors.NewStorageError(err)
	}
	return id, nil
}

func (r *StudentRepository) UpdateStudent(ctx context.Context, student entities.Student) error {
	result, err := r.storage.Exec(ctx,
		`UPDATE `+studentTable+`
		 SET first_names = $1, last_name_paternal = $2, last_name_maternal = $3,
		     national_id = $4, grade = $5, section = $6, phone = $7, status = $8
		 WHERE id = $9`,
		student.FirstNames,
		student.LastNamePaternal,
		student.LastNameMaternal,
		student.NationalID,
		student.Grade,
		student.Section,
		student.Phone,
		student.Status,
		student.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("national id already registered")
		}
		return apperrors.NewStorageError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("student not found")
	}
	return nil
}

func (r *StudentRepository) DeleteStudent(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, "DELETE FROM "+studentTable+" WHERE id = $1", id)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("student not found")
	}
	return nil
}

// SearchActive does a case-insensitive substring match over the name
// parts and the national id, active students only.
func (r *StudentRepository) SearchActive(ctx context.Context, query string, limit int) ([]entities.Student, error) {
	pattern := "%" + query + "%"
	rows, err := r.storage.Query(ctx,
		`SELECT `+studentFields+` FROM `+studentTable+`
		 WHERE status = 'active'
		   AND (first_names ILIKE $1 OR last_name_paternal ILIKE $1 OR last_name_maternal ILIKE $1 OR national_id ILIKE $1)
		 ORDER BY last_name_paternal, last_name_maternal, first_names
		 LIMIT $2`,
		pattern, limit)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

func (r *StudentRepository) ListWithActiveLoanCounts(ctx context.Context) ([]dto.StudentLoanCountDTO, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT s.id, s.first_names, s.last_name_paternal, s.last_name_maternal,
		        s.national_id, s.grade, s.section, s.phone, s.status,
		        COUNT(l.id) AS active_loans
		 FROM `+studentTable+` s
		 JOIN loans l ON l.national_id = s.national_id AND l.closed_at IS NULL
		 GROUP BY s.id
		 ORDER BY active_loans DESC, s.last_name_paternal`)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	result := make([]dto.StudentLoanCountDTO, 0)
	for rows.Next() {
		var item dto.StudentLoanCountDTO
		err := rows.Scan(
			&item.ID,
			&item.FirstNames,
			&item.LastNamePaternal,
			&item.LastNameMaternal,
			&item.NationalID,
			&item.Grade,
			&item.Section,
			&item.Phone,
			&item.Status,
			&item.ActiveLoans,
		)
		if err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// PromoteGradeInTx advances every active student of fromGrade to toGrade.
func (r *StudentRepository) PromoteGradeInTx(ctx context.Context, tx pgx.Tx, fromGrade, toGrade string) (int64, error) {
	result, err := tx.Exec(ctx,
		"UPDATE "+studentTable+" SET grade = $1 WHERE grade = $2 AND status = 'active'",
		toGrade, fromGrade)
	if err != nil {
		return 0, apperrors.NewStorageError(err)
	}
	return result.RowsAffected(), nil
}

// DeactivateGradeInTx flips students at the terminal grade to inactive,
// leaving their grade untouched.
func (r *StudentRepository) DeactivateGradeInTx(ctx context.Context, tx pgx.Tx, grade string) (int64, error) {
	result, err := tx.Exec(ctx,
		"UPDATE "+studentTable+" SET status = 'inactive' WHERE grade = $1 AND status = 'active'",
		grade)
	if err != nil {
		return 0, apperrors.NewStorageError(err)
	}
	return result.RowsAffected(), nil
}
