package database

import (
	"time"

	"github.com/opencanvass/territory/internal/common/cnst"
)

// StartOfDay truncates t to midnight in its own location. Date-only
// comparisons throughout the system go through this one helper.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Territory represents a geographic canvassing area composed of streets
type Territory struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" gorm:"type:varchar(100);not null"`
	Description string     `json:"description"`
	LastVisited *time.Time `json:"lastVisited,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	Streets []Street `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Street represents one street inside a territory
type Street struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TerritoryID uint      `json:"territoryId" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"type:varchar(150);not null"`
	CreatedAt   time.Time `json:"createdAt"`

	Properties []Property `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Property represents a single addressable building or house on a street.
// Buildings and villages with a positive unit count own auto-generated Units,
// created exactly once at property creation; later edits to UnitCount do not
// reconcile the Unit rows.
type Property struct {
	ID          uint              `json:"id" gorm:"primaryKey;autoIncrement"`
	StreetID    uint              `json:"streetId" gorm:"index;not null"`
	HouseNumber string            `json:"houseNumber" gorm:"type:varchar(20);not null"`
	Kind        cnst.PropertyKind `json:"kind" gorm:"type:varchar(20);not null"`
	DisplayName string            `json:"displayName,omitempty"`
	UnitCount   int               `json:"unitCount,omitempty"`
	GateType    string            `json:"gateType,omitempty"`
	AccessType  string            `json:"accessType,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`

	Units   []Unit            `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	History []PropertyHistory `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	// Joined display fields, populated by listing queries only
	StreetName    string `json:"streetName,omitempty" gorm:"-"`
	TerritoryName string `json:"territoryName,omitempty" gorm:"-"`
}

// Label returns the property's display name, falling back to its house number
func (p *Property) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return "Nº " + p.HouseNumber
}

// Unit represents one sub-address inside a multi-unit property
type Unit struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PropertyID uint      `json:"propertyId" gorm:"index;not null"`
	Label      string    `json:"label" gorm:"type:varchar(50);not null"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PropertyHistory is an audit entry recorded against a building or village
type PropertyHistory struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PropertyID  uint      `json:"propertyId" gorm:"index;not null"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FieldTrip represents one scheduled group canvassing outing
type FieldTrip struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Date         time.Time `json:"date"`
	WeekdayLabel string    `json:"weekdayLabel,omitempty"`
	Time         string    `json:"time,omitempty" gorm:"type:varchar(10)"`
	Leader       string    `json:"leader,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TerritoryAssignment grants responsibility for a territory to a person for a
// bounded period, tied to a field trip. Multiple active assignments per
// territory are permitted; overlap is surfaced as a warning, never blocked.
type TerritoryAssignment struct {
	ID           uint                  `json:"id" gorm:"primaryKey;autoIncrement"`
	TerritoryID  uint                  `json:"territoryId" gorm:"index;not null"`
	FieldTripID  uint                  `json:"fieldTripId" gorm:"index;not null"`
	AssignedDate time.Time             `json:"assignedDate"`
	ReturnDate   *time.Time            `json:"returnDate,omitempty"`
	Assignee     string                `json:"assignee,omitempty"`
	Status       cnst.AssignmentStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt    time.Time             `json:"createdAt"`

	TerritoryName string `json:"territoryName,omitempty" gorm:"-"`
	FieldTripName string `json:"fieldTripName,omitempty" gorm:"-"`
}

// PropertyAssignment is the building/village counterpart of a territory
// assignment. The assignee is mandatory.
type PropertyAssignment struct {
	ID           uint                  `json:"id" gorm:"primaryKey;autoIncrement"`
	PropertyID   uint                  `json:"propertyId" gorm:"index;not null"`
	FieldTripID  uint                  `json:"fieldTripId" gorm:"index;not null"`
	AssignedDate time.Time             `json:"assignedDate"`
	ReturnDate   *time.Time            `json:"returnDate,omitempty"`
	Assignee     string                `json:"assignee" gorm:"not null"`
	Status       cnst.AssignmentStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt    time.Time             `json:"createdAt"`

	PropertyNumber string            `json:"propertyNumber,omitempty" gorm:"-"`
	PropertyName   string            `json:"propertyName,omitempty" gorm:"-"`
	PropertyKind   cnst.PropertyKind `json:"propertyKind,omitempty" gorm:"-"`
	StreetName     string            `json:"streetName,omitempty" gorm:"-"`
	TerritoryName  string            `json:"territoryName,omitempty" gorm:"-"`
	FieldTripName  string            `json:"fieldTripName,omitempty" gorm:"-"`
}

// Visit records one canvass attempt against a property or a specific unit.
// A target with no Visit row has not been visited; its most recent row is its
// current status. All rows are retained.
type Visit struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PropertyID uint      `json:"propertyId" gorm:"index;not null"`
	UnitID     *uint     `json:"unitId,omitempty" gorm:"index"`
	Date       time.Time `json:"date"`
	Result     string    `json:"result,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// User represents a system user
type User struct {
	ID              uint                 `json:"id" gorm:"primaryKey;autoIncrement"`
	Name            string               `json:"name" gorm:"type:varchar(100);not null"`
	Email           string               `json:"email" gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash    string               `json:"-" gorm:"not null"`
	PermissionLevel cnst.PermissionLevel `json:"permissionLevel" gorm:"not null;default:1"`
	Active          bool                 `json:"active" gorm:"not null;default:true"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// ActivityLog is an append-only record of a user action. The application
// never mutates or deletes rows.
type ActivityLog struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      uint            `json:"userId" gorm:"index;not null"`
	Action      cnst.ActionKind `json:"action" gorm:"type:varchar(20);not null"`
	Description string          `json:"description"`
	EntityKind  cnst.EntityKind `json:"entityKind,omitempty" gorm:"type:varchar(30)"`
	EntityID    *uint           `json:"entityId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Notification is a per-user alert. Unread alert notifications carry a
// DedupKey with a unique index so that duplicate creation is rejected by the
// store itself rather than by a read-then-write check; marking the row read or
// archived clears the key and releases the slot.
type Notification struct {
	ID         uint                    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uint                    `json:"userId" gorm:"index;not null"`
	Kind       cnst.NotificationKind   `json:"kind" gorm:"type:varchar(20);not null"`
	Title      string                  `json:"title" gorm:"not null"`
	Message    string                  `json:"message"`
	Status     cnst.NotificationStatus `json:"status" gorm:"type:varchar(20);not null;default:'unread'"`
	CreatedAt  time.Time               `json:"createdAt"`
	ReadAt     *time.Time              `json:"readAt,omitempty"`
	Link       string                  `json:"link,omitempty"`
	EntityKind cnst.EntityKind         `json:"entityKind,omitempty" gorm:"type:varchar(30)"`
	EntityID   *uint                   `json:"entityId,omitempty"`
	DedupKey   *string                 `json:"-" gorm:"type:varchar(80);uniqueIndex"`
}
