package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/entities"
	"quipus-system/internal/repositories"
	"quipus-system/pkg/config"
	"quipus-system/pkg/constants"
	apperrors "quipus-system/pkg/errors"
)

type StudentServiceInterface interface {
	GetStudents(ctx context.Context) ([]dto.StudentDTO, error)
	FindStudent(ctx context.Context, id uint64) (*dto.StudentDTO, error)
	RegisterStudent(ctx context.Context, payload dto.RegisterStudentDTO) (*dto.StudentDTO, error)
	UpdateStudent(ctx context.Context, id uint64, payload dto.UpdateStudentDTO) error
	DeleteStudent(ctx context.Context, id uint64) error
	SearchStudents(ctx context.Context, query string) ([]dto.StudentDTO, error)
	PromoteGrades(ctx context.Context) (*dto.PromotionSummaryDTO, error)
	ListWithActiveLoanCounts(ctx context.Context) ([]dto.StudentLoanCountDTO, error)
	ListGradeConfig(ctx context.Context) ([]dto.GradeConfigDTO, error)
}

type StudentService struct {
	txManager   repositories.TxManagerInterface
	studentRepo repositories.StudentRepositoryInterface
	loanRepo    repositories.LoanRepositoryInterface
	gradeRepo   repositories.GradeConfigRepositoryInterface
	loanCfg     config.LoanConfig
	logger      *zap.Logger
}

func NewStudentService(
	txManager repositories.TxManagerInterface,
	studentRepo repositories.StudentRepositoryInterface,
	loanRepo repositories.LoanRepositoryInterface,
	gradeRepo repositories.GradeConfigRepositoryInterface,
	loanCfg config.LoanConfig,
	logger *zap.Logger,
) StudentServiceInterface {
	return &StudentService{
		txManager:   txManager,
		studentRepo: studentRepo,
		loanRepo:    loanRepo,
		gradeRepo:   gradeRepo,
		loanCfg:     loanCfg,
		logger:      logger,
	}
}

func toStudentDTO(s entities.Student) dto.StudentDTO {
	return dto.StudentDTO{
		ID:               s.ID,
		FirstNames:       s.FirstNames,
		LastNamePaternal: s.LastNamePaternal,
		LastNameMaternal: s.LastNameMaternal,
		NationalID:       s.NationalID,
		Grade:            s.Grade,
		Section:          s.Section,
		Phone:            s.Phone,
		Status:           s.Status,
	}
}

func (s *StudentService) GetStudents(ctx context.Context) ([]dto.StudentDTO, error) {
	students, err := s.studentRepo.GetStudents(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.StudentDTO, 0, len(students))
	for _, student := range students {
		result = append(result, toStudentDTO(student))
	}
	return result, nil
}

func (s *StudentService) FindStudent(ctx context.Context, id uint64) (*dto.StudentDTO, error) {
	student, err := s.studentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toStudentDTO(*student)
	return &result, nil
}

func (s *StudentService) RegisterStudent(ctx context.Context, payload dto.RegisterStudentDTO) (*dto.StudentDTO, error) {
	gradeCfg, err := s.gradeRepo.FindByGrade(ctx, payload.Grade)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("grade %q is not configured", payload.Grade)
		}
		return nil, err
	}
	if !gradeCfg.HasSection(payload.Section) {
		return nil, apperrors.NewValidationError("section %q is not valid for grade %q", payload.Section, payload.Grade)
	}

	taken, err := s.studentRepo.ExistsByNationalID(ctx, payload.NationalID, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflictError("national id already registered")
	}

	student := entities.Student{
		FirstNames:       payload.FirstNames,
		LastNamePaternal: payload.LastNamePaternal,
		LastNameMaternal: payload.LastNameMaternal,
		NationalID:       payload.NationalID,
		Grade:            payload.Grade,
		Section:          payload.Section,
		Phone:            payload.Phone,
	}

	id, err := s.studentRepo.CreateStudent(ctx, student)
	if err != nil {
		return nil, err
	}

	s.logger.Info("student registered", zap.Uint64("id", id), zap.String("nationalId", payload.NationalID))
	student.ID = id
	student.Status = constants.StudentStatusActive
	result := toStudentDTO(student)
	return &result, nil
}

func (s *StudentService) UpdateStudent(ctx context.Context, id uint64, payload dto.UpdateStudentDTO) error {
	student, err := s.studentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if payload.FirstNames != nil {
		student.FirstNames = *payload.FirstNames
	}
	if payload.LastNamePaternal != nil {
		student.LastNamePaternal = *payload.LastNamePaternal
	}
	if payload.LastNameMaternal != nil {
		student.LastNameMaternal = *payload.LastNameMaternal
	}
	if payload.NationalID != nil && *payload.NationalID != student.NationalID {
		taken, err := s.studentRepo.ExistsByNationalID(ctx, *payload.NationalID, id)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.NewConflictError("national id already registered")
		}
		student.NationalID = *payload.NationalID
	}
	if payload.Grade != nil {
		student.Grade = *payload.Grade
	}
	if payload.Section != nil {
		student.Section = *payload.Section
	}
	if payload.Grade != nil || payload.Section != nil {
		gradeCfg, err := s.gradeRepo.FindByGrade(ctx, student.Grade)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewValidationError("grade %q is not configured", student.Grade)
			}
			return err
		}
		if !gradeCfg.HasSection(student.Section) {
			return apperrors.NewValidationError("section %q is not valid for grade %q", student.Section, student.Grade)
		}
	}
	if payload.Phone.Valid {
		student.Phone = payload.Phone
	}

	return s.studentRepo.UpdateStudent(ctx, *student)
}

func (s *StudentService) DeleteStudent(ctx context.Context, id uint64) error {
	student, err := s.studentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	hasOpen, err := s.loanRepo.HasOpenLoanByNationalID(ctx, student.NationalID)
	if err != nil {
		return err
	}
	if hasOpen {
		return apperrors.NewConflictError("cannot delete a student with an open loan")
	}

	if err := s.studentRepo.DeleteStudent(ctx, id); err != nil {
		return err
	}

	s.logger.Info("student deleted", zap.Uint64("id", id))
	return nil
}

func (s *StudentService) SearchStudents(ctx context.Context, query string) ([]dto.StudentDTO, error) {
	if len(query) < s.loanCfg.SearchMinQueryLen {
		return []dto.StudentDTO{}, nil
	}

	students, err := s.studentRepo.SearchActive(ctx, query, s.loanCfg.SearchMaxResults)
	if err != nil {
		return nil, err
	}

	result := make([]dto.StudentDTO, 0, len(students))
	for _, student := range students {
		result = append(result, toStudentDTO(student))
	}
	return result, nil
}

// PromoteGrades advances every active student one rung up the configured
// grade ladder; students already on the top rung become inactive with
// their grade unchanged. The ladder is walked top-down so a student is
// never promoted twice in one run. The whole batch is one transaction.
func (s *StudentService) PromoteGrades(ctx context.Context) (*dto.PromotionSummaryDTO, error) {
	ladder, err := s.gradeRepo.GetLadder(ctx)
	if err != nil {
		return nil, err
	}
	if len(ladder) == 0 {
		return nil, apperrors.NewValidationError("no grades configured")
	}

	summary := &dto.PromotionSummaryDTO{Promoted: make(map[string]int64)}
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		top := ladder[len(ladder)-1]
		deactivated, err := s.studentRepo.DeactivateGradeInTx(ctx, tx, top.Grade)
		if err != nil {
			return err
		}
		summary.Deactivated = deactivated

		for i := len(ladder) - 2; i >= 0; i-- {
			from, to := ladder[i], ladder[i+1]
			promoted, err := s.studentRepo.PromoteGradeInTx(ctx, tx, from.Grade, to.Grade)
			if err != nil {
				return err
			}
			summary.Promoted[from.Grade+"->"+to.Grade] = promoted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("grade promotion completed", zap.Int64("deactivated", summary.Deactivated))
	return summary, nil
}

func (s *StudentService) ListWithActiveLoanCounts(ctx context.Context) ([]dto.StudentLoanCountDTO, error) {
	return s.studentRepo.ListWithActiveLoanCounts(ctx)
}

// ListGradeConfig serves the active grade ladder that drives the
// registration form's grade and section dropdowns.
func (s *StudentService) ListGradeConfig(ctx context.Context) ([]dto.GradeConfigDTO, error) {
	ladder, err := s.gradeRepo.GetLadder(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.GradeConfigDTO, 0, len(ladder))
	for _, g := range ladder {
		result = append(result, dto.GradeConfigDTO{
			Grade:    g.Grade,
			Sections: g.Sections,
			Position: g.Position,
		})
	}
	return result, nil
}
