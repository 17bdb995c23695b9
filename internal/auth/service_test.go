package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/common/config"
	"github.com/opencanvass/territory/internal/database"
)

func newTestService(t *testing.T) (*Service, database.Database) {
	t.Helper()
	db, err := database.NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewService(db, zap.NewNop()), db
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "Ana", "ana@example.com", "secret123", cnst.LevelBasic)
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Ana", got.Name)
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "Ana", "ana@example.com", "secret123", cnst.LevelBasic)
	require.NoError(t, err)

	// wrong password
	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, cnst.ErrInvalidCredentials)

	// unknown email
	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, cnst.ErrInvalidCredentials)

	// deactivated account with the correct password
	user.Active = false
	require.NoError(t, db.UpdateUser(ctx, user))
	_, err = svc.Authenticate(ctx, "ana@example.com", "secret123")
	assert.ErrorIs(t, err, cnst.ErrInvalidCredentials)
}

func TestAuthenticateRecordsLogin(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "Ana", "ana@example.com", "secret123", cnst.LevelBasic)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	svc.Logout(ctx, user.ID)

	entries, err := db.ListActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, cnst.ActionLogout, entries[0].Action)
	assert.Equal(t, cnst.ActionLogin, entries[1].Action)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "", "a@example.com", "pw", cnst.LevelBasic)
	assert.ErrorIs(t, err, cnst.ErrValidation)

	_, err = svc.CreateUser(ctx, "Ana", "  ", "pw", cnst.LevelBasic)
	assert.ErrorIs(t, err, cnst.ErrValidation)

	_, err = svc.CreateUser(ctx, "Ana", "a@example.com", "", cnst.LevelBasic)
	assert.ErrorIs(t, err, cnst.ErrValidation)

	_, err = svc.CreateUser(ctx, "Ana", "a@example.com", "pw", cnst.PermissionLevel(9))
	assert.ErrorIs(t, err, cnst.ErrValidation)

	_, err = svc.CreateUser(ctx, "Ana", "a@example.com", "pw", cnst.LevelBasic)
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "Other", "a@example.com", "pw", cnst.LevelBasic)
	assert.ErrorIs(t, err, cnst.ErrEmailTaken)
}

func TestSelfActionGuards(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, "Admin", "admin@example.com", "pw", cnst.LevelAdmin)
	require.NoError(t, err)
	other, err := svc.CreateUser(ctx, "Other", "other@example.com", "pw", cnst.LevelBasic)
	require.NoError(t, err)

	err = svc.AdminUpdateUser(ctx, admin.ID, admin)
	assert.ErrorIs(t, err, cnst.ErrSelfAction)

	err = svc.DeleteUser(ctx, admin.ID, admin.ID)
	assert.ErrorIs(t, err, cnst.ErrSelfAction)

	other.PermissionLevel = cnst.LevelManager
	require.NoError(t, svc.AdminUpdateUser(ctx, admin.ID, other))
	require.NoError(t, svc.DeleteUser(ctx, admin.ID, other.ID))
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "Ana", "ana@example.com", "old-pass", cnst.LevelBasic)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong", "new-pass")
	assert.ErrorIs(t, err, cnst.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID, "old-pass", "")
	assert.ErrorIs(t, err, cnst.ErrValidation)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "old-pass", "new-pass"))

	_, err = svc.Authenticate(ctx, "ana@example.com", "old-pass")
	assert.ErrorIs(t, err, cnst.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ana@example.com", "new-pass")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "Ana", "ana@example.com", "pw", cnst.LevelBasic)
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, user.ID, "", "ana@example.com")
	assert.ErrorIs(t, err, cnst.ErrValidation)

	updated, err := svc.UpdateProfile(ctx, user.ID, "Ana Maria", "ana.maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)

	stored, err := db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana.maria@example.com", stored.Email)
}
