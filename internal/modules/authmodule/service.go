package authmodule

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/soundfoundry/releasedesk/internal/config"
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/events"
	"github.com/soundfoundry/releasedesk/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service implements services.AuthService plus the sign-in/invitation flows.
type Service struct {
	db       *gorm.DB
	eventBus events.EventBus
}

// NewService creates the auth service
func NewService(db *gorm.DB, eventBus events.EventBus) *Service {
	return &Service{db: db, eventBus: eventBus}
}

// SignIn verifies credentials and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*database.Session, *database.Profile, error) {
	var profile database.Profile
	err := s.db.WithContext(ctx).Where("email = ? AND active = ?", email, true).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, badCredentials()
	}
	if err != nil {
		return nil, nil, types.NewInternalError("failed to look up profile", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return nil, nil, badCredentials()
	}

	token, err := newToken()
	if err != nil {
		return nil, nil, types.NewInternalError("failed to generate session token", err)
	}

	session := database.Session{
		Token:     token,
		UserID:    profile.ID,
		ExpiresAt: time.Now().Add(config.Get().Auth.SessionTTL),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, nil, types.NewInternalError("failed to create session", err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(events.Event{
			Type:    events.EventUserSignedIn,
			Source:  "authmodule",
			Message: "user signed in",
			Data:    map[string]interface{}{"user_id": profile.ID},
		})
	}

	return &session, &profile, nil
}

// SignOut deletes the session.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Delete(&database.Session{}, "token = ?", token).Error
}

// ValidateSession resolves a session token to its session and profile.
func (s *Service) ValidateSession(ctx context.Context, token string) (*database.Session, *database.Profile, error) {
	var session database.Session
	err := s.db.WithContext(ctx).First(&session, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, types.NewAppError(types.ErrorCodeSessionNotFound, "session not found", http.StatusUnauthorized)
	}
	if err != nil {
		return nil, nil, types.NewInternalError("failed to look up session", err)
	}

	if session.Expired() {
		s.db.WithContext(ctx).Delete(&database.Session{}, "token = ?", token)
		return nil, nil, types.NewAppError(types.ErrorCodeSessionExpired, "session expired", http.StatusUnauthorized)
	}

	var profile database.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", session.UserID).Error; err != nil {
		return nil, nil, types.NewInternalError("failed to load profile for session", err)
	}

	return &session, &profile, nil
}

// HasRole reports whether the user holds the role. Equivalent of the backend
// has_role RPC.
func (s *Service) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&database.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	if err != nil {
		return false, types.NewInternalError("failed to check role", err)
	}
	return count > 0, nil
}

// GetUserRoles returns all roles held by the user. Equivalent of the backend
// get_user_roles RPC.
func (s *Service) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	var roles []string
	err := s.db.WithContext(ctx).Model(&database.UserRole{}).
		Where("user_id = ?", userID).
		Order("role").
		Pluck("role", &roles).Error
	if err != nil {
		return nil, types.NewInternalError("failed to list roles", err)
	}
	return roles, nil
}

// CheckPassword verifies the user's password without opening a session.
func (s *Service) CheckPassword(ctx context.Context, userID, password string) error {
	var profile database.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		return badCredentials()
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return badCredentials()
	}
	return nil
}

// ConfirmInvitation activates the account behind an invitation token and sets
// its password.
func (s *Service) ConfirmInvitation(ctx context.Context, token, password, displayName string) (*database.Profile, error) {
	var invitation database.InvitationToken
	err := s.db.WithContext(ctx).First(&invitation, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalidInvitation()
	}
	if err != nil {
		return nil, types.NewInternalError("failed to look up invitation", err)
	}
	if invitation.UsedAt != nil || time.Now().After(invitation.ExpiresAt) {
		return nil, invalidInvitation()
	}

	var profile database.Profile
	if err := s.db.WithContext(ctx).First(&profile, "email = ?", invitation.Email).Error; err != nil {
		return nil, types.NewInternalError("failed to load invited profile", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, types.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"password_hash": string(hash),
			"active":        true,
		}
		if displayName != "" {
			updates["display_name"] = displayName
		}
		if err := tx.Model(&profile).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&invitation).Update("used_at", &now).Error
	})
	if err != nil {
		return nil, types.NewInternalError("failed to confirm invitation", err)
	}

	return &profile, nil
}

func badCredentials() *types.AppError {
	err := types.NewAppError(types.ErrorCodeBadCredentials, "invalid email or password", http.StatusUnauthorized)
	err.Severity = types.SeverityWarning
	return err
}

func invalidInvitation() *types.AppError {
	err := types.NewAppError(types.ErrorCodeInvalidToken, "invitation token is invalid or expired", http.StatusBadRequest)
	err.Severity = types.SeverityWarning
	return err
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
