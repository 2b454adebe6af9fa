package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quipus-system/internal/dto"
	"quipus-system/internal/entities"
	apperrors "quipus-system/pkg/errors"
	"quipus-system/pkg/utils"
)

type fakeAdminRepo struct {
	admins map[uint64]entities.Administrator
	nextID uint64
}

func newFakeAdminRepo(admins ...entities.Administrator) *fakeAdminRepo {
	repo := &fakeAdminRepo{admins: make(map[uint64]entities.Administrator), nextID: 1}
	for _, a := range admins {
		repo.admins[a.ID] = a
		if a.ID >= repo.nextID {
			repo.nextID = a.ID + 1
		}
	}
	return repo
}

func (r *fakeAdminRepo) GetAdministrators(ctx context.Context) ([]entities.Administrator, error) {
	out := make([]entities.Administrator, 0, len(r.admins))
	for _, a := range r.admins {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAdminRepo) FindByID(ctx context.Context, id uint64) (*entities.Administrator, error) {
	a, ok := r.admins[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("administrator not found")
	}
	return &a, nil
}

func (r *fakeAdminRepo) FindByUsername(ctx context.Context, username string) (*entities.Administrator, error) {
	for _, a := range r.admins {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, apperrors.NewNotFoundError("administrator not found")
}

func (r *fakeAdminRepo) ExistsByUsername(ctx context.Context, username string, excludeID uint64) (bool, error) {
	for _, a := range r.admins {
		if a.Username == username && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAdminRepo) CountAdministratorRoleExcluding(ctx context.Context, excludeID uint64) (int64, error) {
	var n int64
	for _, a := range r.admins {
		if a.Role == "administrator" && a.ID != excludeID {
			n++
		}
	}
	return n, nil
}

func (r *fakeAdminRepo) CreateAdministrator(ctx context.Context, admin entities.Administrator) (uint64, error) {
	admin.ID = r.nextID
	admin.CreatedAt = time.Now()
	r.nextID++
	r.admins[admin.ID] = admin
	return admin.ID, nil
}

func (r *fakeAdminRepo) UpdateAdministrator(ctx context.Context, admin entities.Administrator) error {
	if _, ok := r.admins[admin.ID]; !ok {
		return apperrors.NewNotFoundError("administrator not found")
	}
	r.admins[admin.ID] = admin
	return nil
}

func (r *fakeAdminRepo) DeleteAdministrator(ctx context.Context, id uint64) error {
	if _, ok := r.admins[id]; !ok {
		return apperrors.NewNotFoundError("administrator not found")
	}
	delete(r.admins, id)
	return nil
}

func adminEntity(id uint64, username, role string) entities.Administrator {
	return entities.Administrator{
		ID:        id,
		Name:      "Admin " + username,
		Username:  username,
		Role:      role,
		CreatedAt: time.Now(),
	}
}

func TestCreateAdministrator_DuplicateUsername(t *testing.T) {
	repo := newFakeAdminRepo(adminEntity(1, "root", "administrator"))
	svc := NewAdminService(repo, zap.NewNop())

	_, err := svc.CreateAdministrator(context.Background(), dto.CreateAdministratorDTO{
		Name:     "Second",
		Username: "root",
		Role:     "administrator",
		Password: "secret1",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestDeleteAdministrator_LastAdminGuard(t *testing.T) {
	repo := newFakeAdminRepo(
		adminEntity(1, "root", "administrator"),
		adminEntity(2, "watcher", "viewer"),
	)
	svc := NewAdminService(repo, zap.NewNop())

	err := svc.DeleteAdministrator(context.Background(), 1, 2)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	// viewers are not protected
	err = svc.DeleteAdministrator(context.Background(), 2, 1)
	require.NoError(t, err)
}

func TestDeleteAdministrator_SecondAdminCanGo(t *testing.T) {
	repo := newFakeAdminRepo(
		adminEntity(1, "root", "administrator"),
		adminEntity(2, "backup", "administrator"),
	)
	svc := NewAdminService(repo, zap.NewNop())

	err := svc.DeleteAdministrator(context.Background(), 2, 1)
	require.NoError(t, err)

	// now 1 is the last administrator
	err = svc.DeleteAdministrator(context.Background(), 1, 99)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestDeleteAdministrator_SelfDelete(t *testing.T) {
	repo := newFakeAdminRepo(
		adminEntity(1, "root", "administrator"),
		adminEntity(2, "backup", "administrator"),
	)
	svc := NewAdminService(repo, zap.NewNop())

	err := svc.DeleteAdministrator(context.Background(), 1, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestUpdateAdministrator_LastAdminDemotionGuard(t *testing.T) {
	repo := newFakeAdminRepo(adminEntity(1, "root", "administrator"))
	svc := NewAdminService(repo, zap.NewNop())

	viewer := "viewer"
	err := svc.UpdateAdministrator(context.Background(), 1, dto.UpdateAdministratorDTO{Role: &viewer})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestAuthLogin(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)

	admin := adminEntity(1, "root", "administrator")
	admin.PasswordHash = hash
	repo := newFakeAdminRepo(admin)

	jwtSvc := newTestJWTService(t)
	svc := NewAuthService(repo, jwtSvc, zap.NewNop())

	res, err := svc.Login(context.Background(), dto.LoginDTO{Username: "root", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "root", res.Admin.Username)

	_, err = svc.Login(context.Background(), dto.LoginDTO{Username: "root", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// unknown usernames get the same error as a bad password
	_, err = svc.Login(context.Background(), dto.LoginDTO{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthRefresh_RejectsAccessToken(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)

	admin := adminEntity(1, "root", "administrator")
	admin.PasswordHash = hash
	repo := newFakeAdminRepo(admin)

	jwtSvc := newTestJWTService(t)
	svc := NewAuthService(repo, jwtSvc, zap.NewNop())

	pair, err := svc.Login(context.Background(), dto.LoginDTO{Username: "root", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), dto.RefreshDTO{RefreshToken: pair.AccessToken})
	assert.ErrorIs(t, err, apperrors.ErrTokenIsNotRefresh)

	res, err := svc.Refresh(context.Background(), dto.RefreshDTO{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
}
