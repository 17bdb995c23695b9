package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/apiserver/middleware"
	"github.com/opencanvass/territory/internal/auth"
	"github.com/opencanvass/territory/internal/auth/jwt"
	"github.com/opencanvass/territory/internal/common/dto"
	"github.com/opencanvass/territory/internal/database"
)

// Auth handles authentication and self-service profile endpoints
type Auth struct {
	svc        *auth.Service
	jwtService *jwt.Service
	db         database.Database
	logger     *zap.Logger
}

// NewAuth creates a new authentication handler
func NewAuth(svc *auth.Service, jwtService *jwt.Service, db database.Database, logger *zap.Logger) *Auth {
	return &Auth{
		svc:        svc,
		jwtService: jwtService,
		db:         db,
		logger:     logger.Named("handler.auth"),
	}
}

// Login handles user login
func (h *Auth) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Email, user.PermissionLevel)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not complete action"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  userInfo(user),
	})
}

// Logout records the logout; the token itself simply expires
func (h *Auth) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.svc.Logout(c.Request.Context(), claims.UserID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetProfile returns the caller's own record
func (h *Auth) GetProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := h.db.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userInfo(user))
}

// UpdateProfile lets the caller change their own name and email
func (h *Auth) UpdateProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	user, err := h.svc.UpdateProfile(c.Request.Context(), claims.UserID, req.Name, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userInfo(user))
}

// ChangePassword verifies the current password before storing the new one
func (h *Auth) ChangePassword(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func userInfo(u *database.User) dto.UserInfo {
	return dto.UserInfo{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		PermissionLevel: u.PermissionLevel,
		Active:          u.Active,
	}
}
