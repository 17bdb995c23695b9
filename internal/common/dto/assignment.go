package dto

import (
	"time"

	"github.com/opencanvass/territory/internal/common/cnst"
)

// TerritoryAssignmentRequest represents a request to assign a territory
type TerritoryAssignmentRequest struct {
	TerritoryID  uint       `json:"territoryId" binding:"required"`
	FieldTripID  uint       `json:"fieldTripId" binding:"required"`
	AssignedDate time.Time  `json:"assignedDate" binding:"required"`
	ReturnDate   *time.Time `json:"returnDate,omitempty"`
	Assignee     string     `json:"assignee"`
}

// PropertyAssignmentRequest represents a request to assign a building or
// village. Unlike territory assignments the assignee is mandatory.
type PropertyAssignmentRequest struct {
	PropertyID   uint       `json:"propertyId" binding:"required"`
	FieldTripID  uint       `json:"fieldTripId" binding:"required"`
	AssignedDate time.Time  `json:"assignedDate" binding:"required"`
	ReturnDate   *time.Time `json:"returnDate,omitempty"`
	Assignee     string     `json:"assignee" binding:"required"`
}

// AssignmentUpdateRequest represents an edit to an existing assignment. The
// edit is a full overwrite of the mutable fields, so setting status back to
// active reopens a completed assignment.
type AssignmentUpdateRequest struct {
	FieldTripID  uint                  `json:"fieldTripId" binding:"required"`
	AssignedDate time.Time             `json:"assignedDate" binding:"required"`
	ReturnDate   *time.Time            `json:"returnDate,omitempty"`
	Assignee     string                `json:"assignee"`
	Status       cnst.AssignmentStatus `json:"status" binding:"required,oneof=active completed"`
}
