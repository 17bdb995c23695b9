package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/common/dto"
	"github.com/opencanvass/territory/internal/database"
)

// Territory handles territory and street endpoints
type Territory struct {
	db     database.Database
	logger *zap.Logger
}

// NewTerritory creates a new territory handler
func NewTerritory(db database.Database, logger *zap.Logger) *Territory {
	return &Territory{db: db, logger: logger.Named("handler.territory")}
}

// HandleList returns all territories
func (h *Territory) HandleList(c *gin.Context) {
	territories, err := h.db.ListTerritories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, territories)
}

// HandleGet returns one territory with its streets
func (h *Territory) HandleGet(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	territory, err := h.db.GetTerritory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	streets, err := h.db.ListStreets(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"territory": territory, "streets": streets})
}

// HandleCreate creates a territory
func (h *Territory) HandleCreate(c *gin.Context) {
	var req dto.TerritoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	territory := &database.Territory{Name: req.Name, Description: req.Description, LastVisited: req.LastVisited}
	if err := h.db.CreateTerritory(c.Request.Context(), territory); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionCreate, cnst.EntityTerritory, territory.ID, "created territory "+territory.Name)
	c.JSON(http.StatusCreated, territory)
}

// HandleUpdate updates a territory's name and description
func (h *Territory) HandleUpdate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TerritoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	territory, err := h.db.GetTerritory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	territory.Name = req.Name
	territory.Description = req.Description
	territory.LastVisited = req.LastVisited
	if err := h.db.UpdateTerritory(c.Request.Context(), territory); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionEdit, cnst.EntityTerritory, territory.ID, "updated territory "+territory.Name)
	c.JSON(http.StatusOK, territory)
}

// HandleDelete removes a territory and everything under it
func (h *Territory) HandleDelete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteTerritory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionDelete, cnst.EntityTerritory, id, "deleted territory")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleCreateStreet adds a street to a territory
func (h *Territory) HandleCreateStreet(c *gin.Context) {
	territoryID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.StreetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if _, err := h.db.GetTerritory(c.Request.Context(), territoryID); err != nil {
		respondError(c, err)
		return
	}
	street := &database.Street{TerritoryID: territoryID, Name: req.Name}
	if err := h.db.CreateStreet(c.Request.Context(), street); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionCreate, cnst.EntityStreet, street.ID, "created street "+street.Name)
	c.JSON(http.StatusCreated, street)
}

// HandleListStreets returns the streets of a territory
func (h *Territory) HandleListStreets(c *gin.Context) {
	territoryID, ok := parseID(c, "id")
	if !ok {
		return
	}
	streets, err := h.db.ListStreets(c.Request.Context(), territoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, streets)
}

// HandleDeleteStreet removes a street and its properties
func (h *Territory) HandleDeleteStreet(c *gin.Context) {
	streetID, ok := parseID(c, "streetId")
	if !ok {
		return
	}
	if err := h.db.DeleteStreet(c.Request.Context(), streetID); err != nil {
		respondError(c, err)
		return
	}
	recordActivity(c, h.db, h.logger, cnst.ActionDelete, cnst.EntityStreet, streetID, "deleted street")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
