package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/apiserver/middleware"
	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/common/dto"
	"github.com/opencanvass/territory/internal/database"
)

// Notification handles per-user notification endpoints
type Notification struct {
	db     database.Database
	logger *zap.Logger
}

// NewNotification creates a new notification handler
func NewNotification(db database.Database, logger *zap.Logger) *Notification {
	return &Notification{db: db, logger: logger.Named("handler.notification")}
}

// HandleList returns the caller's notifications, newest first; ?unread=true
// narrows to unread ones.
func (h *Notification) HandleList(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	notifications, err := h.db.ListNotifications(c.Request.Context(), claims.UserID, c.Query("unread") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// HandleMarkRead marks one of the caller's notifications read
func (h *Notification) HandleMarkRead(c *gin.Context) {
	n, ok := h.ownNotification(c)
	if !ok {
		return
	}
	marked, err := h.db.MarkNotificationRead(c.Request.Context(), n.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": marked})
}

// HandleArchive archives one of the caller's notifications
func (h *Notification) HandleArchive(c *gin.Context) {
	n, ok := h.ownNotification(c)
	if !ok {
		return
	}
	archived, err := h.db.ArchiveNotification(c.Request.Context(), n.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": archived})
}

// HandleBroadcast sends an announcement to every active user
func (h *Notification) HandleBroadcast(c *gin.Context) {
	var req dto.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = cnst.NotificationInfo
	}
	if err := h.db.NotifyActiveUsers(c.Request.Context(), &database.Notification{
		Kind:    kind,
		Title:   req.Title,
		Message: req.Message,
		Status:  cnst.NotificationUnread,
	}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ownNotification loads the addressed notification and checks it belongs to
// the caller. Someone else's notification reads as not found.
func (h *Notification) ownNotification(c *gin.Context) (*database.Notification, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	n, err := h.db.GetNotification(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if n.UserID != claims.UserID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	return n, true
}
