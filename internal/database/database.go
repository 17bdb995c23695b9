package database

import (
	"context"
	"time"

	"github.com/opencanvass/territory/internal/common/cnst"
)

// Database defines the persistence operations used by the rest of the system.
// Implementations translate store-level "row not found" conditions into
// cnst.ErrNotFound so callers never see driver errors for missing rows.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Territories
	CreateTerritory(ctx context.Context, t *Territory) error
	GetTerritory(ctx context.Context, id uint) (*Territory, error)
	ListTerritories(ctx context.Context) ([]*Territory, error)
	UpdateTerritory(ctx context.Context, t *Territory) error
	// DeleteTerritory removes the territory and everything under it:
	// streets, properties, units, history, assignments and visits.
	DeleteTerritory(ctx context.Context, id uint) error

	// Streets
	CreateStreet(ctx context.Context, s *Street) error
	GetStreet(ctx context.Context, id uint) (*Street, error)
	ListStreets(ctx context.Context, territoryID uint) ([]*Street, error)
	DeleteStreet(ctx context.Context, id uint) error

	// Properties. CreateProperty also creates the auto-generated units for
	// buildings and villages with a positive unit count, in one transaction.
	CreateProperty(ctx context.Context, p *Property) error
	GetProperty(ctx context.Context, id uint) (*Property, error)
	ListPropertiesByStreet(ctx context.Context, streetID uint) ([]*Property, error)
	ListPropertiesByKind(ctx context.Context, kind cnst.PropertyKind) ([]*Property, error)
	// ListMultiUnitProperties returns buildings and villages with their street
	// and territory names populated.
	ListMultiUnitProperties(ctx context.Context) ([]*Property, error)
	UpdateProperty(ctx context.Context, p *Property) error
	DeleteProperty(ctx context.Context, id uint) error
	ListUnits(ctx context.Context, propertyID uint) ([]*Unit, error)
	UpdateUnit(ctx context.Context, u *Unit) error
	AddPropertyHistory(ctx context.Context, h *PropertyHistory) error
	ListPropertyHistory(ctx context.Context, propertyID uint) ([]*PropertyHistory, error)

	// Field trips
	CreateFieldTrip(ctx context.Context, ft *FieldTrip) error
	GetFieldTrip(ctx context.Context, id uint) (*FieldTrip, error)
	ListFieldTrips(ctx context.Context) ([]*FieldTrip, error)
	ListUpcomingFieldTrips(ctx context.Context, from time.Time, limit int) ([]*FieldTrip, error)
	UpdateFieldTrip(ctx context.Context, ft *FieldTrip) error
	DeleteFieldTrip(ctx context.Context, id uint) error

	// Territory assignments
	CreateTerritoryAssignment(ctx context.Context, a *TerritoryAssignment) error
	GetTerritoryAssignment(ctx context.Context, id uint) (*TerritoryAssignment, error)
	ListTerritoryAssignments(ctx context.Context) ([]*TerritoryAssignment, error)
	ListActiveTerritoryAssignments(ctx context.Context) ([]*TerritoryAssignment, error)
	ListTerritoryAssignmentsByTerritory(ctx context.Context, territoryID uint) ([]*TerritoryAssignment, error)
	// GetActiveTerritoryAssignment returns the active assignment for the
	// territory with the most recent assigned date, or ErrNotFound.
	GetActiveTerritoryAssignment(ctx context.Context, territoryID uint) (*TerritoryAssignment, error)
	// GetTerritoryAssignmentDueToday returns the most recently assigned active
	// assignment whose window [assigned date, return date or unbounded]
	// contains the given day.
	GetTerritoryAssignmentDueToday(ctx context.Context, today time.Time) (*TerritoryAssignment, error)
	ListTerritoryAssignmentsDueBetween(ctx context.Context, from, to time.Time) ([]*TerritoryAssignment, error)
	UpdateTerritoryAssignment(ctx context.Context, a *TerritoryAssignment) error
	ConcludeTerritoryAssignment(ctx context.Context, id uint) (bool, error)
	DeleteTerritoryAssignment(ctx context.Context, id uint) (bool, error)

	// Property assignments
	CreatePropertyAssignment(ctx context.Context, a *PropertyAssignment) error
	GetPropertyAssignment(ctx context.Context, id uint) (*PropertyAssignment, error)
	ListPropertyAssignments(ctx context.Context) ([]*PropertyAssignment, error)
	ListActivePropertyAssignments(ctx context.Context) ([]*PropertyAssignment, error)
	GetActivePropertyAssignment(ctx context.Context, propertyID uint) (*PropertyAssignment, error)
	ListPropertyAssignmentsDueBetween(ctx context.Context, from, to time.Time) ([]*PropertyAssignment, error)
	UpdatePropertyAssignment(ctx context.Context, a *PropertyAssignment) error
	ConcludePropertyAssignment(ctx context.Context, id uint) (bool, error)
	DeletePropertyAssignment(ctx context.Context, id uint) (bool, error)

	// Visits
	CreateVisit(ctx context.Context, v *Visit) error
	ListVisitsByProperty(ctx context.Context, propertyID uint) ([]*Visit, error)
	// LatestVisit returns the most recent visit for the property, or for one
	// unit when unitID is non-nil. ErrNotFound means "not yet visited".
	LatestVisit(ctx context.Context, propertyID uint, unitID *uint) (*Visit, error)

	// Users
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uint) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	ListActiveUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id uint) error

	// Activity log (append-only)
	AppendActivity(ctx context.Context, e *ActivityLog) error
	ListActivity(ctx context.Context, limit int) ([]*ActivityLog, error)
	ListActivityByUser(ctx context.Context, userID uint, limit int) ([]*ActivityLog, error)

	// Notifications
	CreateNotification(ctx context.Context, n *Notification) error
	// CreateNotificationIfAbsent inserts the notification unless another row
	// already holds its dedup key. Returns true when a row was inserted.
	CreateNotificationIfAbsent(ctx context.Context, n *Notification) (bool, error)
	// NotifyActiveUsers creates one notification per active user.
	NotifyActiveUsers(ctx context.Context, n *Notification) error
	GetNotification(ctx context.Context, id uint) (*Notification, error)
	ListNotifications(ctx context.Context, userID uint, unreadOnly bool) ([]*Notification, error)
	MarkNotificationRead(ctx context.Context, id uint) (bool, error)
	ArchiveNotification(ctx context.Context, id uint) (bool, error)
}
