package services

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/entities"
	"quipus-system/pkg/config"
	apperrors "quipus-system/pkg/errors"
)

func testLoanConfig() config.LoanConfig {
	return config.LoanConfig{
		MaxActiveLoansPerStudent: 1,
		OverdueAfter:             7 * 24 * time.Hour,
		SearchMinQueryLen:        2,
		SearchMaxResults:         10,
		StatsCacheTTL:            time.Minute,
	}
}

func activeStudent() entities.Student {
	return entities.Student{
		ID:               1,
		FirstNames:       "Maria Elena",
		LastNamePaternal: "Quispe",
		LastNameMaternal: "Mamani",
		NationalID:       "12345678",
		Grade:            "5",
		Section:          "B",
		Status:           "active",
	}
}

func availableDevice(code string) entities.Device {
	return entities.Device{Code: code, State: "available", RegisteredAt: time.Now()}
}

func newLoanServiceForTest(
	students *fakeStudentRepo,
	devices *fakeDeviceRepo,
	loans *fakeLoanRepo,
	cache *fakeCacheRepo,
	cfg config.LoanConfig,
) LoanServiceInterface {
	return NewLoanService(&fakeTxManager{}, loans, devices, students, cache, cfg, zap.NewNop())
}

func TestOpenLoan_Success(t *testing.T) {
	students := newFakeStudentRepo(activeStudent())
	devices := newFakeDeviceRepo(availableDevice("Q-001"))
	loans := newFakeLoanRepo()
	cache := newFakeCacheRepo()
	svc := newLoanServiceForTest(students, devices, loans, cache, testLoanConfig())

	res, err := svc.OpenLoan(context.Background(), dto.OpenLoanDTO{StudentID: 1, DeviceCode: "Q-001"})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "Maria Elena Quispe Mamani", res.Student.Name)
	assert.Equal(t, "12345678", res.Student.NationalID)
	assert.Equal(t, "5° B", res.Student.GradeSection)
	assert.Equal(t, "Q-001", res.Device.Code)

	device, err := devices.FindByCode(context.Background(), "Q-001")
	require.NoError(t, err)
	assert.Equal(t, "loaned", device.State)

	// ledger snapshot survives later student edits
	loan, err := loans.FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Elena Quispe Mamani", loan.StudentName)
	assert.True(t, loan.IsOpen())

	// the cached counters are dropped after the mutation
	require.Len(t, cache.delCalls, 1)
	assert.Contains(t, cache.delCalls[0], "stats:loans")
	assert.Contains(t, cache.delCalls[0], "stats:dashboard")
}

func TestOpenLoan_StudentInactive(t *testing.T) {
	student := activeStudent()
	student.Status = "inactive"
	students := newFakeStudentRepo(student)
	devices := newFakeDeviceRepo(availableDevice("Q-001"))
	svc := newLoanServiceForTest(students, devices, newFakeLoanRepo(), newFakeCacheRepo(), testLoanConfig())

	_, err := svc.OpenLoan(context.Background(), dto.OpenLoanDTO{StudentID: 1, DeviceCode: "Q-001"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotEligible(err))

	// the device must be untouched
	device, findErr := devices.FindByCode(context.Background(), "Q-001")
	require.NoError(t, findErr)
	assert.Equal(t, "available", device.State)
}

func TestOpenLoan_DeviceNotFound(t *testing.T) {
	students := newFakeStudentRepo(activeStudent())
	svc := newLoanServiceForTest(students, newFakeDeviceRepo(), newFakeLoanRepo(), newFakeCacheRepo(), testLoanConfig())

	_, err := svc.OpenLoan(context.Background(), dto.OpenLoanDTO{StudentID: 1, DeviceCode: "Q-404"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestOpenLoan_DeviceUnavailable(t *testing.T) {
	device := availableDevice("Q-001")
	device.State = "maintenance"
	students := newFakeStudentRepo(activeStudent())
	devices := newFakeDeviceRepo(device)
	svc := newLoanServiceForTest(students, devices, newFakeLoanRepo(), newFakeCacheRepo(), testLoanConfig())

	_, err := svc.OpenLoan(context.Background(), dto.OpenLoanDTO{StudentID: 1, DeviceCode: "Q-001"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "device unavailable: maintenance")
}

func TestOpenLoan_DuplicatePair(t *testing.T) {
	students := newFakeStudentRepo(activeStudent())
	devices := newFakeDeviceRepo(availableDevice("Q-001"))
	loans := newFakeLoanRepo(entities.Loan{
		ID:          7,
		StudentName: "Maria Elena Quispe Mamani",
		NationalID:  "12345678",
		DeviceCode:  "Q-001",
		OpenedAt:    time.Now(),
	})
	svc := newLoanServiceForTest(students, devices, loans, newFakeCacheRepo(), testLoanConfig())

	_, err := svc.OpenLoan(context.Background(), dto.OpenLoanDTO{StudentID: 1, DeviceCode: "Q-001"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "duplicate active loan")
}

func TestOpenLoan_LimitExceeded(t *testing.T) {
	students := newFakeStudentRepo(activeStudent())
	devices := newFakeDeviceRepo(availableDevice("Q-002"))
	loans := newFakeLoanRepo(entities.Loan{
		ID:         7,
		NationalID: "12345678",
		DeviceCode: "Q-001",
		OpenedAt:   time.Now(),
	})
	svc := newLoanServiceForTest(students, devices, loans, newFakeCacheRepo(), testLoanConfig())

	_, err := svc.OpenLoan(context.Background(), dto.OpenLoanDTO{StudentID: 1, DeviceCode: "Q-002"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "loan limit exceeded")
}

func TestOpenLoan_HigherLimitAllowsSecondLoan(t *testing.T) {
	cfg := testLoanConfig()
	cfg.MaxActiveLoansPerStudent = 2
	students := newFakeStudentRepo(activeStudent())
	devices := newFakeDeviceRepo(availableDevice("Q-002"))
	loans := newFakeLoanRepo(entities.Loan{
		ID:         7,
		NationalID: "12345678",
		DeviceCode: "Q-001",
		OpenedAt:   time.Now(),
	})
	svc := newLoanServiceForTest(students, devices, loans, newFakeCacheRepo(), cfg)

	res, err := svc.OpenLoan(context.Background(), dto.OpenLoanDTO{StudentID: 1, DeviceCode: "Q-002"})
	require.NoError(t, err)
	assert.Equal(t, "Q-002", res.Device.Code)
}

func TestOpenLoan_MissingFields(t *testing.T) {
	svc := newLoanServiceForTest(newFakeStudentRepo(), newFakeDeviceRepo(), newFakeLoanRepo(), newFakeCacheRepo(), testLoanConfig())

	_, err := svc.OpenLoan(context.Background(), dto.OpenLoanDTO{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCloseLoan_Success(t *testing.T) {
	device := availableDevice("Q-001")
	device.State = "loaned"
	devices := newFakeDeviceRepo(device)
	loans := newFakeLoanRepo(entities.Loan{
		ID:          3,
		StudentName: "Maria Elena Quispe Mamani",
		NationalID:  "12345678",
		DeviceCode:  "Q-001",
		OpenedAt:    time.Now().Add(-48 * time.Hour),
	})
	cache := newFakeCacheRepo()
	svc := newLoanServiceForTest(newFakeStudentRepo(), devices, loans, cache, testLoanConfig())

	res, err := svc.CloseLoan(context.Background(), dto.CloseLoanDTO{LoanID: 3, Notes: null.StringFrom("small scratch")})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.ID)
	assert.Equal(t, "Q-001", res.DeviceCode)
	assert.NotEmpty(t, res.ClosedAt)

	got, err := devices.FindByCode(context.Background(), "Q-001")
	require.NoError(t, err)
	assert.Equal(t, "available", got.State)

	closed, err := loans.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, closed.IsOpen())
	assert.Equal(t, "small scratch", closed.Notes.String)

	require.Len(t, cache.delCalls, 1)
}

func TestCloseLoan_AlreadyClosed(t *testing.T) {
	loans := newFakeLoanRepo(entities.Loan{
		ID:         3,
		NationalID: "12345678",
		DeviceCode: "Q-001",
		OpenedAt:   time.Now().Add(-48 * time.Hour),
		ClosedAt:   null.TimeFrom(time.Now().Add(-time.Hour)),
	})
	svc := newLoanServiceForTest(newFakeStudentRepo(), newFakeDeviceRepo(), loans, newFakeCacheRepo(), testLoanConfig())

	_, err := svc.CloseLoan(context.Background(), dto.CloseLoanDTO{LoanID: 3})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCloseLoan_RestoresDeviceFromAnyState(t *testing.T) {
	device := availableDevice("Q-001")
	device.State = "maintenance"
	devices := newFakeDeviceRepo(device)
	loans := newFakeLoanRepo(entities.Loan{
		ID:         3,
		NationalID: "12345678",
		DeviceCode: "Q-001",
		OpenedAt:   time.Now(),
	})
	svc := newLoanServiceForTest(newFakeStudentRepo(), devices, loans, newFakeCacheRepo(), testLoanConfig())

	_, err := svc.CloseLoan(context.Background(), dto.CloseLoanDTO{LoanID: 3})
	require.NoError(t, err)

	got, err := devices.FindByCode(context.Background(), "Q-001")
	require.NoError(t, err)
	assert.Equal(t, "available", got.State)
}

// A full open, close, reopen round trip: the same device can serve a
// new loan once the previous one is closed.
func TestLoanRoundTrip(t *testing.T) {
	students := newFakeStudentRepo(activeStudent())
	devices := newFakeDeviceRepo(availableDevice("Q-001"))
	loans := newFakeLoanRepo()
	svc := newLoanServiceForTest(students, devices, loans, newFakeCacheRepo(), testLoanConfig())
	ctx := context.Background()

	first, err := svc.OpenLoan(ctx, dto.OpenLoanDTO{StudentID: 1, DeviceCode: "Q-001"})
	require.NoError(t, err)

	// second attempt on the loaned device must fail
	_, err = svc.OpenLoan(ctx, dto.OpenLoanDTO{StudentID: 1, DeviceCode: "Q-001"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	_, err = svc.CloseLoan(ctx, dto.CloseLoanDTO{LoanID: first.ID})
	require.NoError(t, err)

	second, err := svc.OpenLoan(ctx, dto.OpenLoanDTO{StudentID: 1, DeviceCode: "Q-001"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestHistoryByStudent(t *testing.T) {
	loans := newFakeLoanRepo(
		entities.Loan{ID: 1, NationalID: "12345678", DeviceCode: "Q-001",
			OpenedAt: time.Now().Add(-72 * time.Hour), ClosedAt: null.TimeFrom(time.Now().Add(-24 * time.Hour))},
		entities.Loan{ID: 2, NationalID: "12345678", DeviceCode: "Q-002", OpenedAt: time.Now()},
	)
	svc := newLoanServiceForTest(newFakeStudentRepo(), newFakeDeviceRepo(), loans, newFakeCacheRepo(), testLoanConfig())

	history, err := svc.HistoryByStudent(context.Background(), "12345678")
	require.NoError(t, err)
	require.Len(t, history, 2)

	statuses := map[uint64]string{}
	for _, item := range history {
		statuses[item.ID] = item.Status
	}
	assert.Equal(t, "returned", statuses[1])
	assert.Equal(t, "pending", statuses[2])
}

func TestHistoryByStudent_EmptyNationalID(t *testing.T) {
	svc := newLoanServiceForTest(newFakeStudentRepo(), newFakeDeviceRepo(), newFakeLoanRepo(), newFakeCacheRepo(), testLoanConfig())

	_, err := svc.HistoryByStudent(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
