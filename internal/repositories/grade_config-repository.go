package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quipus-system/internal/entities"
	apperrors "quipus-system/pkg/errors"
)

const gradeConfigTable = "grade_config"

type GradeConfigRepositoryInterface interface {
	GetLadder(ctx context.Context) ([]entities.GradeConfig, error)
	FindByGrade(ctx context.Context, grade string) (*entities.GradeConfig, error)
}

type GradeConfigRepository struct {
	storage *pgxpool.Pool
}

func NewGradeConfigRepository(storage *pgxpool.Pool) GradeConfigRepositoryInterface {
	return &GradeConfigRepository{storage: storage}
}

// GetLadder returns the active grades ordered by position, lowest first.
// Promotion folds over this slice instead of hardcoding grade labels.
func (r *GradeConfigRepository) GetLadder(ctx context.Context) ([]entities.GradeConfig, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT grade, sections, position, active FROM "+gradeConfigTable+" WHERE active ORDER BY position")
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer rows.Close()

	ladder := make([]entities.GradeConfig, 0)
	for rows.Next() {
		var g entities.GradeConfig
		if err := rows.Scan(&g.Grade, &g.Sections, &g.Position, &g.Active); err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		ladder = append(ladder, g)
	}
	return ladder, rows.Err()
}

func (r *GradeConfigRepository) FindByGrade(ctx context.Context, grade string) (*entities.GradeConfig, error) {
	var g entities.GradeConfig
	err := r.storage.QueryRow(ctx,
		"SELECT grade, sections, position, active FROM "+gradeConfigTable+" WHERE grade = $1",
		grade).Scan(&g.Grade, &g.Sections, &g.Position, &g.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("grade %q is not configured", grade)
		}
		return nil, apperrors.NewStorageError(err)
	}
	return &g, nil
}
