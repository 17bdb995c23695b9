package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/apiserver/middleware"
	"github.com/opencanvass/territory/internal/auth"
	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/common/dto"
	"github.com/opencanvass/territory/internal/database"
)

// User handles administrative user management and the activity log
type User struct {
	svc    *auth.Service
	db     database.Database
	logger *zap.Logger
}

// NewUser creates a new user management handler
func NewUser(svc *auth.Service, db database.Database, logger *zap.Logger) *User {
	return &User{svc: svc, db: db, logger: logger.Named("handler.user")}
}

// HandleList returns all users
func (h *User) HandleList(c *gin.Context) {
	users, err := h.db.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	infos := make([]dto.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, userInfo(u))
	}
	c.JSON(http.StatusOK, infos)
}

// HandleCreate registers a new user
func (h *User) HandleCreate(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	user, err := h.svc.CreateUser(c.Request.Context(), req.Name, req.Email, req.Password, req.PermissionLevel)
	if err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionCreate, cnst.EntityUser, user.ID, "created user "+user.Name)
	c.JSON(http.StatusCreated, userInfo(user))
}

// HandleUpdate applies an administrative edit to another user. Editing or
// deactivating your own record through this path is rejected.
func (h *User) HandleUpdate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.db.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	user.Name = req.Name
	user.Email = req.Email
	user.PermissionLevel = req.PermissionLevel
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		user.PasswordHash = hash
	}
	if err := h.svc.AdminUpdateUser(c.Request.Context(), claims.UserID, user); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionEdit, cnst.EntityUser, user.ID, "updated user "+user.Name)
	c.JSON(http.StatusOK, userInfo(user))
}

// HandleDelete removes a user; never the caller's own account
func (h *User) HandleDelete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), claims.UserID, id); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionDelete, cnst.EntityUser, id, "deleted user")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleActivity returns the most recent activity log entries; ?userId=
// narrows to one user.
func (h *User) HandleActivity(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	if raw := c.Query("userId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId"})
			return
		}
		entries, err := h.db.ListActivityByUser(c.Request.Context(), uint(parsed), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}

	entries, err := h.db.ListActivity(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
