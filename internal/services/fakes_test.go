package services

import (
	"context"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"

	"quipus-system/internal/dto"
	"quipus-system/internal/entities"
	apperrors "quipus-system/pkg/errors"
)

// In-memory fakes for the repository interfaces. The transactional
// variants ignore the tx argument; the fake tx manager just invokes the
// callback so the service logic under test runs unchanged.

type fakeTxManager struct {
	beginErr error
	calls    int
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	m.calls++
	return fn(nil)
}

type fakeStudentRepo struct {
	students map[uint64]entities.Student

	// promotions records the batch operations in execution order
	promotions   []string
	promoteCount map[string]int64
	deactivated  string
	deactCount   int64
}

func newFakeStudentRepo(students ...entities.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{
		students:     make(map[uint64]entities.Student),
		promoteCount: make(map[string]int64),
	}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (r *fakeStudentRepo) GetStudents(ctx context.Context) ([]entities.Student, error) {
	out := make([]entities.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeStudentRepo) FindByID(ctx context.Context, id uint64) (*entities.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("student not found")
	}
	return &s, nil
}

func (r *fakeStudentRepo) FindByNationalID(ctx context.Context, nationalID string) (*entities.Student, error) {
	for _, s := range r.students {
		if s.NationalID == nationalID {
			return &s, nil
		}
	}
	return nil, apperrors.NewNotFoundError("student not found")
}

func (r *fakeStudentRepo) ExistsByNationalID(ctx context.Context, nationalID string, excludeID uint64) (bool, error) {
	for _, s := range r.students {
		if s.NationalID == nationalID && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeStudentRepo) CreateStudent(ctx context.Context, student entities.Student) (uint64, error) {
	id := uint64(len(r.students) + 1)
	student.ID = id
	student.Status = "active"
	r.students[id] = student
	return id, nil
}

func (r *fakeStudentRepo) UpdateStudent(ctx context.Context, student entities.Student) error {
	if _, ok := r.students[student.ID]; !ok {
		return apperrors.NewNotFoundError("student not found")
	}
	r.students[student.ID] = student
	return nil
}

func (r *fakeStudentRepo) DeleteStudent(ctx context.Context, id uint64) error {
	if _, ok := r.students[id]; !ok {
		return apperrors.NewNotFoundError("student not found")
	}
	delete(r.students, id)
	return nil
}

func (r *fakeStudentRepo) SearchActive(ctx context.Context, query string, limit int) ([]entities.Student, error) {
	return nil, nil
}

func (r *fakeStudentRepo) ListWithActiveLoanCounts(ctx context.Context) ([]dto.StudentLoanCountDTO, error) {
	return nil, nil
}

func (r *fakeStudentRepo) FindActiveByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Student, error) {
	s, ok := r.students[id]
	if !ok || s.Status != "active" {
		return nil, apperrors.NewNotEligibleError("student not found or inactive")
	}
	return &s, nil
}

func (r *fakeStudentRepo) PromoteGradeInTx(ctx context.Context, tx pgx.Tx, fromGrade, toGrade string) (int64, error) {
	r.promotions = append(r.promotions, fromGrade+"->"+toGrade)
	var n int64
	for id, s := range r.students {
		if s.Status == "active" && s.Grade == fromGrade {
			s.Grade = toGrade
			r.students[id] = s
			n++
		}
	}
	r.promoteCount[fromGrade+"->"+toGrade] = n
	return n, nil
}

func (r *fakeStudentRepo) DeactivateGradeInTx(ctx context.Context, tx pgx.Tx, grade string) (int64, error) {
	r.promotions = append(r.promotions, "deactivate:"+grade)
	r.deactivated = grade
	var n int64
	for id, s := range r.students {
		if s.Status == "active" && s.Grade == grade {
			s.Status = "inactive"
			r.students[id] = s
			n++
		}
	}
	r.deactCount = n
	return n, nil
}

type fakeDeviceRepo struct {
	devices map[string]entities.Device
}

func newFakeDeviceRepo(devices ...entities.Device) *fakeDeviceRepo {
	repo := &fakeDeviceRepo{devices: make(map[string]entities.Device)}
	for _, d := range devices {
		repo.devices[d.Code] = d
	}
	return repo
}

func (r *fakeDeviceRepo) GetDevices(ctx context.Context) ([]entities.Device, error) {
	out := make([]entities.Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDeviceRepo) GetAvailableDevices(ctx context.Context) ([]entities.Device, error) {
	out := make([]entities.Device, 0)
	for _, d := range r.devices {
		if d.State == "available" {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDeviceRepo) FindByCode(ctx context.Context, code string) (*entities.Device, error) {
	d, ok := r.devices[code]
	if !ok {
		return nil, apperrors.NewNotFoundError("device not found: %s", code)
	}
	return &d, nil
}

func (r *fakeDeviceRepo) CreateDevice(ctx context.Context, code string) (*entities.Device, error) {
	d := entities.Device{Code: code, State: "available", RegisteredAt: time.Now()}
	r.devices[code] = d
	return &d, nil
}

func (r *fakeDeviceRepo) UpdateState(ctx context.Context, code string, state string) error {
	d, ok := r.devices[code]
	if !ok {
		return apperrors.NewNotFoundError("device not found: %s", code)
	}
	d.State = state
	r.devices[code] = d
	return nil
}

func (r *fakeDeviceRepo) DeleteDevice(ctx context.Context, code string) error {
	if _, ok := r.devices[code]; !ok {
		return apperrors.NewNotFoundError("device not found: %s", code)
	}
	delete(r.devices, code)
	return nil
}

func (r *fakeDeviceRepo) FindByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*entities.Device, error) {
	return r.FindByCode(ctx, code)
}

func (r *fakeDeviceRepo) UpdateStateInTx(ctx context.Context, tx pgx.Tx, code string, state string) error {
	return r.UpdateState(ctx, code, state)
}

type fakeLoanRepo struct {
	loans  map[uint64]entities.Loan
	nextID uint64
}

func newFakeLoanRepo(loans ...entities.Loan) *fakeLoanRepo {
	repo := &fakeLoanRepo{loans: make(map[uint64]entities.Loan), nextID: 1}
	for _, l := range loans {
		repo.loans[l.ID] = l
		if l.ID >= repo.nextID {
			repo.nextID = l.ID + 1
		}
	}
	return repo
}

func (r *fakeLoanRepo) FindByID(ctx context.Context, id uint64) (*entities.Loan, error) {
	l, ok := r.loans[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("loan not found")
	}
	return &l, nil
}

func (r *fakeLoanRepo) GetActiveLoans(ctx context.Context) ([]dto.ActiveLoanDTO, error) {
	return nil, nil
}

func (r *fakeLoanRepo) HistoryByNationalID(ctx context.Context, nationalID string) ([]entities.Loan, error) {
	out := make([]entities.Loan, 0)
	for _, l := range r.loans {
		if l.NationalID == nationalID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) HasOpenLoanByDeviceCode(ctx context.Context, deviceCode string) (bool, error) {
	for _, l := range r.loans {
		if l.DeviceCode == deviceCode && l.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLoanRepo) HasOpenLoanByNationalID(ctx context.Context, nationalID string) (bool, error) {
	for _, l := range r.loans {
		if l.NationalID == nationalID && l.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLoanRepo) CreateLoanInTx(ctx context.Context, tx pgx.Tx, loan entities.Loan) (uint64, error) {
	loan.ID = r.nextID
	r.nextID++
	r.loans[loan.ID] = loan
	return loan.ID, nil
}

func (r *fakeLoanRepo) FindOpenByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Loan, error) {
	l, ok := r.loans[id]
	if !ok || !l.IsOpen() {
		return nil, apperrors.NewNotFoundError("open loan not found")
	}
	return &l, nil
}

func (r *fakeLoanRepo) CloseLoanInTx(ctx context.Context, tx pgx.Tx, id uint64, closedAt time.Time, notes null.String) error {
	l, ok := r.loans[id]
	if !ok || !l.IsOpen() {
		return apperrors.NewNotFoundError("open loan not found")
	}
	l.ClosedAt = null.TimeFrom(closedAt)
	if notes.Valid {
		l.Notes = notes
	}
	r.loans[id] = l
	return nil
}

func (r *fakeLoanRepo) ExistsOpenPairInTx(ctx context.Context, tx pgx.Tx, nationalID, deviceCode string) (bool, error) {
	for _, l := range r.loans {
		if l.NationalID == nationalID && l.DeviceCode == deviceCode && l.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLoanRepo) CountOpenByNationalIDInTx(ctx context.Context, tx pgx.Tx, nationalID string) (int64, error) {
	var n int64
	for _, l := range r.loans {
		if l.NationalID == nationalID && l.IsOpen() {
			n++
		}
	}
	return n, nil
}

type fakeCacheRepo struct {
	values   map[string]string
	delCalls [][]string
	getErr   error
	setErr   error
	delErr   error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{values: make(map[string]string)}
}

func (r *fakeCacheRepo) Get(ctx context.Context, key string) (string, error) {
	if r.getErr != nil {
		return "", r.getErr
	}
	v, ok := r.values[key]
	if !ok {
		return "", apperrors.NewNotFoundError("cache miss")
	}
	return v, nil
}

func (r *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if r.setErr != nil {
		return r.setErr
	}
	switch v := value.(type) {
	case string:
		r.values[key] = v
	case []byte:
		r.values[key] = string(v)
	}
	return nil
}

func (r *fakeCacheRepo) Del(ctx context.Context, keys ...string) error {
	if r.delErr != nil {
		return r.delErr
	}
	r.delCalls = append(r.delCalls, keys)
	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}

type fakeGradeRepo struct {
	ladder []entities.GradeConfig
}

func (r *fakeGradeRepo) GetLadder(ctx context.Context) ([]entities.GradeConfig, error) {
	return r.ladder, nil
}

func (r *fakeGradeRepo) FindByGrade(ctx context.Context, grade string) (*entities.GradeConfig, error) {
	for i := range r.ladder {
		if r.ladder[i].Grade == grade {
			return &r.ladder[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("grade not configured")
}
