package dto

import (
	"time"

	"github.com/opencanvass/territory/internal/common/cnst"
)

// TerritoryRequest represents a request to create or update a territory.
// Updates overwrite the whole record, last visited date included.
type TerritoryRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	LastVisited *time.Time `json:"lastVisited,omitempty"`
}

// StreetRequest represents a request to add a street to a territory
type StreetRequest struct {
	Name string `json:"name" binding:"required"`
}

// PropertyRequest represents a request to create or update a property.
// UnitCount only matters for buildings and villages, and only at creation.
type PropertyRequest struct {
	StreetID    uint              `json:"streetId" binding:"required"`
	HouseNumber string            `json:"houseNumber" binding:"required"`
	Kind        cnst.PropertyKind `json:"kind" binding:"required"`
	DisplayName string            `json:"displayName"`
	UnitCount   int               `json:"unitCount"`
	GateType    string            `json:"gateType"`
	AccessType  string            `json:"accessType"`
	Notes       string            `json:"notes"`
}

// UnitRequest represents an edit to a single unit
type UnitRequest struct {
	Label string `json:"label" binding:"required"`
	Notes string `json:"notes"`
}

// PropertyHistoryRequest represents a new history entry for a property
type PropertyHistoryRequest struct {
	Date        time.Time `json:"date" binding:"required"`
	Description string    `json:"description" binding:"required"`
}

// VisitRequest represents a canvass attempt against a property or one unit
type VisitRequest struct {
	UnitID *uint     `json:"unitId,omitempty"`
	Date   time.Time `json:"date" binding:"required"`
	Result string    `json:"result"`
	Notes  string    `json:"notes"`
}

// FieldTripRequest represents a request to create or update a field trip
type FieldTripRequest struct {
	Name         string    `json:"name" binding:"required"`
	Date         time.Time `json:"date" binding:"required"`
	WeekdayLabel string    `json:"weekdayLabel"`
	Time         string    `json:"time"`
	Leader       string    `json:"leader"`
}
