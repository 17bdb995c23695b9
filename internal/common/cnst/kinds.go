package cnst

// PropertyKind represents the kind of a property on a street
type PropertyKind string

const (
	// PropertyResidential represents a single-family residential property
	PropertyResidential PropertyKind = "residential"
	// PropertyCommercial represents a commercial property
	PropertyCommercial PropertyKind = "commercial"
	// PropertyBuilding represents a multi-unit apartment building
	PropertyBuilding PropertyKind = "building"
	// PropertyVillage represents a gated row of houses sharing one address
	PropertyVillage PropertyKind = "village"
)

// IsMultiUnit reports whether properties of this kind own Unit rows
func (k PropertyKind) IsMultiUnit() bool {
	return k == PropertyBuilding || k == PropertyVillage
}

// Valid reports whether the kind is one of the known property kinds
func (k PropertyKind) Valid() bool {
	switch k {
	case PropertyResidential, PropertyCommercial, PropertyBuilding, PropertyVillage:
		return true
	}
	return false
}

// UnitPrefix returns the label prefix for auto-generated units of this kind
func (k PropertyKind) UnitPrefix() string {
	if k == PropertyVillage {
		return "Casa"
	}
	return "Apto"
}

// AssignmentStatus represents the lifecycle state of an assignment
type AssignmentStatus string

const (
	// AssignmentActive is the initial state of every assignment
	AssignmentActive AssignmentStatus = "active"
	// AssignmentCompleted is the terminal state reached via Conclude
	AssignmentCompleted AssignmentStatus = "completed"
)

// EntityKind identifies the entity a log entry or notification refers to
type EntityKind string

const (
	EntityTerritory           EntityKind = "territory"
	EntityStreet              EntityKind = "street"
	EntityProperty            EntityKind = "property"
	EntityUnit                EntityKind = "unit"
	EntityFieldTrip           EntityKind = "field_trip"
	EntityTerritoryAssignment EntityKind = "territory_assignment"
	EntityPropertyAssignment  EntityKind = "property_assignment"
	EntityVisit               EntityKind = "visit"
	EntityUser                EntityKind = "user"
)

// ActionKind represents the type of action recorded in the activity log
type ActionKind string

const (
	ActionLogin  ActionKind = "login"
	ActionLogout ActionKind = "logout"
	ActionCreate ActionKind = "create"
	ActionEdit   ActionKind = "edit"
	ActionDelete ActionKind = "delete"
	ActionView   ActionKind = "view"
)

// NotificationKind represents the severity of a notification
type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationWarning NotificationKind = "warning"
	NotificationError   NotificationKind = "error"
)

// NotificationStatus represents the read state of a notification
type NotificationStatus string

const (
	NotificationUnread   NotificationStatus = "unread"
	NotificationRead     NotificationStatus = "read"
	NotificationArchived NotificationStatus = "archived"
)

// PermissionLevel is an ordinal permission tier; higher levels include
// every capability of the levels below them.
type PermissionLevel int

const (
	// LevelBasic may record visits and browse data
	LevelBasic PermissionLevel = 1
	// LevelManager may manage territories, assignments and field trips
	LevelManager PermissionLevel = 2
	// LevelAdmin may additionally manage users
	LevelAdmin PermissionLevel = 3
)

// Allows reports whether the level grants a capability requiring required
func (l PermissionLevel) Allows(required PermissionLevel) bool {
	return l >= required
}

// Valid reports whether the level is one of the known tiers
func (l PermissionLevel) Valid() bool {
	return l >= LevelBasic && l <= LevelAdmin
}
