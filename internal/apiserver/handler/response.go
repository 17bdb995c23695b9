package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/apiserver/middleware"
	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/database"
)

// respondError translates service errors into HTTP responses. Unexpected
// errors are reported as a generic message so internals never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cnst.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, cnst.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, cnst.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, cnst.ErrSelfAction):
		c.JSON(http.StatusConflict, gin.H{"error": "operation not permitted on your own account"})
	case errors.Is(err, cnst.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not complete action"})
	}
}

// parseID reads a numeric path parameter, responding 400 on garbage
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// recordActivity appends an activity log entry for the authenticated caller.
// Logging failures never fail the request.
func recordActivity(c *gin.Context, db database.Database, logger *zap.Logger, action cnst.ActionKind, kind cnst.EntityKind, entityID uint, description string) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return
	}
	id := entityID
	entry := &database.ActivityLog{
		UserID:      claims.UserID,
		Action:      action,
		Description: description,
		EntityKind:  kind,
	}
	if entityID != 0 {
		entry.EntityID = &id
	}
	if err := db.AppendActivity(context.WithoutCancel(c.Request.Context()), entry); err != nil {
		logger.Warn("failed to record activity",
			zap.String("action", string(action)),
			zap.String("entity_kind", string(kind)),
			zap.Error(err))
	}
}
