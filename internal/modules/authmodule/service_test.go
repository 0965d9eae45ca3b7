package authmodule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestAuth(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&database.Profile{},
		&database.UserRole{},
		&database.Session{},
		&database.InvitationToken{},
	))

	return NewService(db, nil), db
}

func seedUser(t *testing.T, db *gorm.DB, email, password string, active bool) *database.Profile {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	profile := database.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Active:       active,
	}
	require.NoError(t, db.Create(&profile).Error)
	return &profile
}

func TestSignInAndValidateSession(t *testing.T) {
	svc, db := newTestAuth(t)
	user := seedUser(t, db, "artist@example.com", "hunter2", true)

	session, profile, err := svc.SignIn(context.Background(), "artist@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	_, validated, err := svc.ValidateSession(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, validated.ID)
}

func TestSignInBadCredentials(t *testing.T) {
	svc, db := newTestAuth(t)
	seedUser(t, db, "artist@example.com", "hunter2", true)

	_, _, err := svc.SignIn(context.Background(), "artist@example.com", "wrong")
	require.Error(t, err)

	_, _, err = svc.SignIn(context.Background(), "nobody@example.com", "hunter2")
	require.Error(t, err)
}

func TestSignInInactiveAccount(t *testing.T) {
	svc, db := newTestAuth(t)
	seedUser(t, db, "pending@example.com", "hunter2", false)

	_, _, err := svc.SignIn(context.Background(), "pending@example.com", "hunter2")
	require.Error(t, err)
}

func TestValidateSessionExpiry(t *testing.T) {
	svc, db := newTestAuth(t)
	user := seedUser(t, db, "artist@example.com", "hunter2", true)

	expired := database.Session{
		Token:     "expired-token",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(&expired).Error)

	_, _, err := svc.ValidateSession(context.Background(), "expired-token")
	require.Error(t, err)

	appErr, ok := err.(*types.AppError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorCodeSessionExpired, appErr.Code)

	// The expired row is removed on first use.
	var count int64
	require.NoError(t, db.Model(&database.Session{}).Where("token = ?", "expired-token").Count(&count).Error)
	assert.Zero(t, count)
}

func TestSignOutInvalidatesSession(t *testing.T) {
	svc, db := newTestAuth(t)
	seedUser(t, db, "artist@example.com", "hunter2", true)

	session, _, err := svc.SignIn(context.Background(), "artist@example.com", "hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(context.Background(), session.Token))

	_, _, err = svc.ValidateSession(context.Background(), session.Token)
	require.Error(t, err)
}

func TestRoleQueries(t *testing.T) {
	svc, db := newTestAuth(t)
	user := seedUser(t, db, "mod@example.com", "hunter2", true)
	require.NoError(t, db.Create(&database.UserRole{UserID: user.ID, Role: database.RoleModerator}).Error)
	require.NoError(t, db.Create(&database.UserRole{UserID: user.ID, Role: database.RoleArtist}).Error)

	has, err := svc.HasRole(context.Background(), user.ID, database.RoleModerator)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = svc.HasRole(context.Background(), "someone-else", database.RoleModerator)
	require.NoError(t, err)
	assert.False(t, has)

	roles, err := svc.GetUserRoles(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{database.RoleArtist, database.RoleModerator}, roles)
}

func TestConfirmInvitation(t *testing.T) {
	svc, db := newTestAuth(t)
	seedUser(t, db, "invited@example.com", "placeholder", false)

	invitation := database.InvitationToken{
		Token:     "invite-1",
		Email:     "invited@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(&invitation).Error)

	profile, err := svc.ConfirmInvitation(context.Background(), "invite-1", "new-password", "New Artist")
	require.NoError(t, err)

	_, _, err = svc.SignIn(context.Background(), profile.Email, "new-password")
	require.NoError(t, err)

	// The token is single-use.
	_, err = svc.ConfirmInvitation(context.Background(), "invite-1", "again", "")
	require.Error(t, err)
}

func TestConfirmInvitationExpired(t *testing.T) {
	svc, db := newTestAuth(t)
	seedUser(t, db, "late@example.com", "placeholder", false)

	invitation := database.InvitationToken{
		Token:     "invite-2",
		Email:     "late@example.com",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&invitation).Error)

	_, err := svc.ConfirmInvitation(context.Background(), "invite-2", "pw", "")
	require.Error(t, err)
}
