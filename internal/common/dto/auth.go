package dto

import "github.com/opencanvass/territory/internal/common/cnst"

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserInfo represents the user information returned to clients
type UserInfo struct {
	ID              uint                 `json:"id"`
	Name            string               `json:"name"`
	Email           string               `json:"email"`
	PermissionLevel cnst.PermissionLevel `json:"permissionLevel"`
	Active          bool                 `json:"active"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// ChangePasswordRequest represents a request to change password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// UpdateProfileRequest represents a request to update the caller's own record
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Name            string               `json:"name" binding:"required"`
	Email           string               `json:"email" binding:"required,email"`
	Password        string               `json:"password" binding:"required"`
	PermissionLevel cnst.PermissionLevel `json:"permissionLevel" binding:"required,oneof=1 2 3"`
}

// BroadcastRequest represents an announcement sent to every active user
type BroadcastRequest struct {
	Title   string                `json:"title" binding:"required"`
	Message string                `json:"message"`
	Kind    cnst.NotificationKind `json:"kind"`
}

// UpdateUserRequest represents an administrative edit of another user
type UpdateUserRequest struct {
	Name            string               `json:"name" binding:"required"`
	Email           string               `json:"email" binding:"required,email"`
	Password        string               `json:"password,omitempty"`
	PermissionLevel cnst.PermissionLevel `json:"permissionLevel" binding:"required,oneof=1 2 3"`
	Active          *bool                `json:"active,omitempty"`
}
