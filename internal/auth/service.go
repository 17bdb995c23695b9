package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/database"
)

// dummyRecord is verified against on the unknown-email path so authentication
// takes the same time whether or not the account exists.
const dummyRecord = "0000000000000000000000000000000000000000000000000000000000000000:" +
	"0000000000000000000000000000000000000000000000000000000000000000"

// Service authenticates users and enforces account-management rules
type Service struct {
	db     database.Database
	logger *zap.Logger
}

// NewService creates a new access-control service
func NewService(db database.Database, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.Named("auth"),
	}
}

// Authenticate looks up the user by email, verifies the password and requires
// an active account. Every failure yields cnst.ErrInvalidCredentials so the
// caller cannot distinguish an unknown email from a wrong password or a
// deactivated account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*database.User, error) {
	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, cnst.ErrNotFound) {
			VerifyPassword(password, dummyRecord)
			return nil, cnst.ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(password, user.PasswordHash) || !user.Active {
		return nil, cnst.ErrInvalidCredentials
	}

	if err := s.db.AppendActivity(ctx, &database.ActivityLog{
		UserID:      user.ID,
		Action:      cnst.ActionLogin,
		Description: "logged in",
	}); err != nil {
		s.logger.Warn("failed to record login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

// Logout records the logout action for the user
func (s *Service) Logout(ctx context.Context, userID uint) {
	if err := s.db.AppendActivity(ctx, &database.ActivityLog{
		UserID:      userID,
		Action:      cnst.ActionLogout,
		Description: "logged out",
	}); err != nil {
		s.logger.Warn("failed to record logout", zap.Uint("user_id", userID), zap.Error(err))
	}
}

// CreateUser registers a new user with a freshly derived password hash
func (s *Service) CreateUser(ctx context.Context, name, email, password string, level cnst.PermissionLevel) (*database.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, cnst.ErrValidation
	}
	if !level.Valid() {
		return nil, cnst.ErrValidation
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &database.User{
		Name:            name,
		Email:           email,
		PasswordHash:    hash,
		PermissionLevel: level,
		Active:          true,
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AdminUpdateUser applies an administrative edit to another user's record.
// Users may not edit their own record through this path; self-edits go
// through the profile operations below.
func (s *Service) AdminUpdateUser(ctx context.Context, actorID uint, user *database.User) error {
	if actorID == user.ID {
		return cnst.ErrSelfAction
	}
	if !user.PermissionLevel.Valid() {
		return cnst.ErrValidation
	}
	return s.db.UpdateUser(ctx, user)
}

// DeleteUser removes a user. A user may never delete their own account.
func (s *Service) DeleteUser(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return cnst.ErrSelfAction
	}
	return s.db.DeleteUser(ctx, targetID)
}

// UpdateProfile lets a user change their own name and email
func (s *Service) UpdateProfile(ctx context.Context, userID uint, name, email string) (*database.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, cnst.ErrValidation
	}
	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.Email = email
	if err := s.db.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash
func (s *Service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if newPassword == "" {
		return cnst.ErrValidation
	}
	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !VerifyPassword(oldPassword, user.PasswordHash) {
		return cnst.ErrInvalidCredentials
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.db.UpdateUser(ctx, user)
}
