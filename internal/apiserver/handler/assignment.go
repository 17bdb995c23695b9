package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/assignment"
	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/common/dto"
	"github.com/opencanvass/territory/internal/database"
)

// Assignment handles territory and property assignment endpoints
type Assignment struct {
	svc    *assignment.Service
	db     database.Database
	logger *zap.Logger
}

// NewAssignment creates a new assignment handler
func NewAssignment(svc *assignment.Service, db database.Database, logger *zap.Logger) *Assignment {
	return &Assignment{svc: svc, db: db, logger: logger.Named("handler.assignment")}
}

// HandleCreateTerritory assigns a territory. An overlap with an existing
// active assignment is returned as a warning next to the created row.
func (h *Assignment) HandleCreateTerritory(c *gin.Context) {
	var req dto.TerritoryAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	a := &database.TerritoryAssignment{
		TerritoryID:  req.TerritoryID,
		FieldTripID:  req.FieldTripID,
		AssignedDate: req.AssignedDate,
		ReturnDate:   req.ReturnDate,
		Assignee:     req.Assignee,
	}
	warning, err := h.svc.CreateTerritoryAssignment(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionCreate, cnst.EntityTerritoryAssignment, a.ID, "assigned territory")
	body := gin.H{"assignment": a}
	if warning != nil {
		body["warning"] = warning
	}
	c.JSON(http.StatusCreated, body)
}

// HandleCreateProperty assigns a building or village
func (h *Assignment) HandleCreateProperty(c *gin.Context) {
	var req dto.PropertyAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	a := &database.PropertyAssignment{
		PropertyID:   req.PropertyID,
		FieldTripID:  req.FieldTripID,
		AssignedDate: req.AssignedDate,
		ReturnDate:   req.ReturnDate,
		Assignee:     req.Assignee,
	}
	warning, err := h.svc.CreatePropertyAssignment(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionCreate, cnst.EntityPropertyAssignment, a.ID, "assigned property")
	body := gin.H{"assignment": a}
	if warning != nil {
		body["warning"] = warning
	}
	c.JSON(http.StatusCreated, body)
}

// HandleListTerritory lists territory assignments; ?active=true narrows to
// active ones.
func (h *Assignment) HandleListTerritory(c *gin.Context) {
	var (
		assignments []*database.TerritoryAssignment
		err         error
	)
	if c.Query("active") == "true" {
		assignments, err = h.db.ListActiveTerritoryAssignments(c.Request.Context())
	} else {
		assignments, err = h.db.ListTerritoryAssignments(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// HandleListProperty lists property assignments; ?active=true narrows to
// active ones.
func (h *Assignment) HandleListProperty(c *gin.Context) {
	var (
		assignments []*database.PropertyAssignment
		err         error
	)
	if c.Query("active") == "true" {
		assignments, err = h.db.ListActivePropertyAssignments(c.Request.Context())
	} else {
		assignments, err = h.db.ListPropertyAssignments(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// HandleGetTerritory returns one territory assignment
func (h *Assignment) HandleGetTerritory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.db.GetTerritoryAssignment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// HandleGetProperty returns one property assignment
func (h *Assignment) HandleGetProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.db.GetPropertyAssignment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// HandleUpdateTerritory overwrites the mutable fields of an assignment
func (h *Assignment) HandleUpdateTerritory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	a, err := h.db.GetTerritoryAssignment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	a.FieldTripID = req.FieldTripID
	a.AssignedDate = req.AssignedDate
	a.ReturnDate = req.ReturnDate
	a.Assignee = req.Assignee
	a.Status = req.Status
	if err := h.svc.UpdateTerritoryAssignment(c.Request.Context(), a); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionEdit, cnst.EntityTerritoryAssignment, a.ID, "updated territory assignment")
	c.JSON(http.StatusOK, a)
}

// HandleUpdateProperty overwrites the mutable fields of an assignment
func (h *Assignment) HandleUpdateProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	a, err := h.db.GetPropertyAssignment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	a.FieldTripID = req.FieldTripID
	a.AssignedDate = req.AssignedDate
	a.ReturnDate = req.ReturnDate
	a.Assignee = req.Assignee
	a.Status = req.Status
	if err := h.svc.UpdatePropertyAssignment(c.Request.Context(), a); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionEdit, cnst.EntityPropertyAssignment, a.ID, "updated property assignment")
	c.JSON(http.StatusOK, a)
}

// HandleConcludeTerritory marks a territory assignment completed
func (h *Assignment) HandleConcludeTerritory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	concluded, err := h.svc.ConcludeTerritory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !concluded {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionEdit, cnst.EntityTerritoryAssignment, id, "concluded territory assignment")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleConcludeProperty marks a property assignment completed
func (h *Assignment) HandleConcludeProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	concluded, err := h.svc.ConcludeProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !concluded {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionEdit, cnst.EntityPropertyAssignment, id, "concluded property assignment")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleDeleteTerritory removes a territory assignment
func (h *Assignment) HandleDeleteTerritory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteTerritoryAssignment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionDelete, cnst.EntityTerritoryAssignment, id, "deleted territory assignment")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleDeleteProperty removes a property assignment
func (h *Assignment) HandleDeleteProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePropertyAssignment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionDelete, cnst.EntityPropertyAssignment, id, "deleted property assignment")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleActiveForTerritory returns the active assignment covering a territory
func (h *Assignment) HandleActiveForTerritory(c *gin.Context) {
	territoryID, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.ActiveForTerritory(c.Request.Context(), territoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// HandleActiveForProperty returns the active assignment covering a property
func (h *Assignment) HandleActiveForProperty(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.ActiveForProperty(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// HandleDueToday returns the territory currently out whose working window
// contains today.
func (h *Assignment) HandleDueToday(c *gin.Context) {
	a, err := h.svc.DueToday(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
