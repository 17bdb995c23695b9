package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/common/dto"
	"github.com/opencanvass/territory/internal/database"
)

// FieldTrip handles field trip endpoints
type FieldTrip struct {
	db     database.Database
	logger *zap.Logger
}

// NewFieldTrip creates a new field trip handler
func NewFieldTrip(db database.Database, logger *zap.Logger) *FieldTrip {
	return &FieldTrip{db: db, logger: logger.Named("handler.fieldtrip")}
}

// HandleList returns all field trips
func (h *FieldTrip) HandleList(c *gin.Context) {
	trips, err := h.db.ListFieldTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

// HandleUpcoming returns the next scheduled field trips
func (h *FieldTrip) HandleUpcoming(c *gin.Context) {
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	trips, err := h.db.ListUpcomingFieldTrips(c.Request.Context(), time.Now(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

// HandleGet returns one field trip
func (h *FieldTrip) HandleGet(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	trip, err := h.db.GetFieldTrip(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// HandleCreate creates a field trip
func (h *FieldTrip) HandleCreate(c *gin.Context) {
	var req dto.FieldTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	trip := &database.FieldTrip{
		Name:         req.Name,
		Date:         req.Date,
		WeekdayLabel: req.WeekdayLabel,
		Time:         req.Time,
		Leader:       req.Leader,
	}
	if err := h.db.CreateFieldTrip(c.Request.Context(), trip); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionCreate, cnst.EntityFieldTrip, trip.ID, "created field trip "+trip.Name)
	c.JSON(http.StatusCreated, trip)
}

// HandleUpdate updates a field trip
func (h *FieldTrip) HandleUpdate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.FieldTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	trip, err := h.db.GetFieldTrip(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	trip.Name = req.Name
	trip.Date = req.Date
	trip.WeekdayLabel = req.WeekdayLabel
	trip.Time = req.Time
	trip.Leader = req.Leader
	if err := h.db.UpdateFieldTrip(c.Request.Context(), trip); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionEdit, cnst.EntityFieldTrip, trip.ID, "updated field trip "+trip.Name)
	c.JSON(http.StatusOK, trip)
}

// HandleDelete removes a field trip
func (h *FieldTrip) HandleDelete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteFieldTrip(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionDelete, cnst.EntityFieldTrip, id, "deleted field trip")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
