package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/common/dto"
	"github.com/opencanvass/territory/internal/database"
)

// Property handles property, unit, history and visit endpoints
type Property struct {
	db     database.Database
	logger *zap.Logger
}

// NewProperty creates a new property handler
func NewProperty(db database.Database, logger *zap.Logger) *Property {
	return &Property{db: db, logger: logger.Named("handler.property")}
}

// HandleCreate creates a property. Buildings and villages get their units
// generated here, once.
func (h *Property) HandleCreate(c *gin.Context) {
	var req dto.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !req.Kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property kind"})
		return
	}
	if _, err := h.db.GetStreet(c.Request.Context(), req.StreetID); err != nil {
		respondError(c, err)
		return
	}

	property := &database.Property{
		StreetID:    req.StreetID,
		HouseNumber: req.HouseNumber,
		Kind:        req.Kind,
		DisplayName: req.DisplayName,
		UnitCount:   req.UnitCount,
		GateType:    req.GateType,
		AccessType:  req.AccessType,
		Notes:       req.Notes,
	}
	if err := h.db.CreateProperty(c.Request.Context(), property); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionCreate, cnst.EntityProperty, property.ID, "created property "+property.Label())
	c.JSON(http.StatusCreated, property)
}

// HandleGet returns one property with its units
func (h *Property) HandleGet(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	property, err := h.db.GetProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	units, err := h.db.ListUnits(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property, "units": units})
}

// HandleListByStreet returns the properties of a street
func (h *Property) HandleListByStreet(c *gin.Context) {
	streetID, ok := parseID(c, "streetId")
	if !ok {
		return
	}
	properties, err := h.db.ListPropertiesByStreet(c.Request.Context(), streetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

// HandleListMultiUnit returns all buildings and villages with their street and
// territory names.
func (h *Property) HandleListMultiUnit(c *gin.Context) {
	properties, err := h.db.ListMultiUnitProperties(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

// HandleUpdate updates a property. Changing the unit count does not touch the
// existing unit rows.
func (h *Property) HandleUpdate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !req.Kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property kind"})
		return
	}
	property, err := h.db.GetProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	property.HouseNumber = req.HouseNumber
	property.Kind = req.Kind
	property.DisplayName = req.DisplayName
	property.UnitCount = req.UnitCount
	property.GateType = req.GateType
	property.AccessType = req.AccessType
	property.Notes = req.Notes
	if err := h.db.UpdateProperty(c.Request.Context(), property); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionEdit, cnst.EntityProperty, property.ID, "updated property "+property.Label())
	c.JSON(http.StatusOK, property)
}

// HandleDelete removes a property with its units, history and visits
func (h *Property) HandleDelete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteProperty(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionDelete, cnst.EntityProperty, id, "deleted property")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleUpdateUnit edits one unit's label and notes
func (h *Property) HandleUpdateUnit(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	unitID, ok := parseID(c, "unitId")
	if !ok {
		return
	}
	var req dto.UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	units, err := h.db.ListUnits(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	var unit *database.Unit
	for _, u := range units {
		if u.ID == unitID {
			unit = u
			break
		}
	}
	if unit == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	unit.Label = req.Label
	unit.Notes = req.Notes
	if err := h.db.UpdateUnit(c.Request.Context(), unit); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionEdit, cnst.EntityUnit, unit.ID, "updated unit "+unit.Label)
	c.JSON(http.StatusOK, unit)
}

// HandleAddHistory records a history entry against a property
func (h *Property) HandleAddHistory(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PropertyHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if _, err := h.db.GetProperty(c.Request.Context(), propertyID); err != nil {
		respondError(c, err)
		return
	}
	entry := &database.PropertyHistory{
		PropertyID:  propertyID,
		Date:        req.Date,
		Description: req.Description,
	}
	if err := h.db.AddPropertyHistory(c.Request.Context(), entry); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// HandleListHistory returns the history entries of a property
func (h *Property) HandleListHistory(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	entries, err := h.db.ListPropertyHistory(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// HandleCreateVisit records a canvass attempt against the property or one of
// its units.
func (h *Property) HandleCreateVisit(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	visit := &database.Visit{
		PropertyID: propertyID,
		UnitID:     req.UnitID,
		Date:       req.Date,
		Result:     req.Result,
		Notes:      req.Notes,
	}
	if err := h.db.CreateVisit(c.Request.Context(), visit); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionCreate, cnst.EntityVisit, visit.ID, "recorded visit")
	c.JSON(http.StatusCreated, visit)
}

// HandleListVisits returns all visits recorded against a property
func (h *Property) HandleListVisits(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	visits, err := h.db.ListVisitsByProperty(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, visits)
}

// HandleLatestVisit returns the most recent visit for the property, or for
// one unit when unitId is given. 404 means "not yet visited".
func (h *Property) HandleLatestVisit(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var unitID *uint
	if raw := c.Query("unitId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unitId"})
			return
		}
		id := uint(parsed)
		unitID = &id
	}
	visit, err := h.db.LatestVisit(c.Request.Context(), propertyID, unitID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}
