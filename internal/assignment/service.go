package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/database"
)

// ConflictWarning describes an existing active assignment on the same target.
// Overlap is allowed; the warning is advisory only.
type ConflictWarning struct {
	AssignmentID uint      `json:"assignmentId"`
	Assignee     string    `json:"assignee,omitempty"`
	AssignedDate time.Time `json:"assignedDate"`
	Message      string    `json:"message"`
}

// Service manages territory and property assignment lifecycles
type Service struct {
	db     database.Database
	logger *zap.Logger
}

// NewService creates a new assignment service
func NewService(db database.Database, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.Named("assignment"),
	}
}

// CheckTerritoryConflict reports the active assignment already covering the
// territory, or nil when there is none.
func (s *Service) CheckTerritoryConflict(ctx context.Context, territoryID uint) (*ConflictWarning, error) {
	active, err := s.db.GetActiveTerritoryAssignment(ctx, territoryID)
	if err != nil {
		if errors.Is(err, cnst.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return territoryWarning(active), nil
}

// CheckPropertyConflict reports the active assignment already covering the
// property, or nil when there is none.
func (s *Service) CheckPropertyConflict(ctx context.Context, propertyID uint) (*ConflictWarning, error) {
	active, err := s.db.GetActivePropertyAssignment(ctx, propertyID)
	if err != nil {
		if errors.Is(err, cnst.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return propertyWarning(active), nil
}

// CreateTerritoryAssignment assigns a territory for a field trip. When the
// territory already has an active assignment the new one is still created and
// the overlap is returned as a warning.
func (s *Service) CreateTerritoryAssignment(ctx context.Context, a *database.TerritoryAssignment) (*ConflictWarning, error) {
	if _, err := s.db.GetTerritory(ctx, a.TerritoryID); err != nil {
		return nil, err
	}
	if _, err := s.db.GetFieldTrip(ctx, a.FieldTripID); err != nil {
		return nil, err
	}

	warning, err := s.CheckTerritoryConflict(ctx, a.TerritoryID)
	if err != nil {
		return nil, err
	}

	a.Status = cnst.AssignmentActive
	if err := s.db.CreateTerritoryAssignment(ctx, a); err != nil {
		return nil, err
	}
	if warning != nil {
		s.logger.Info("territory assigned over an active assignment",
			zap.Uint("territory_id", a.TerritoryID),
			zap.Uint("existing_assignment_id", warning.AssignmentID))
	}
	return warning, nil
}

// CreatePropertyAssignment assigns a building or village. The assignee is
// mandatory; overlap with an active assignment is warned, not blocked.
func (s *Service) CreatePropertyAssignment(ctx context.Context, a *database.PropertyAssignment) (*ConflictWarning, error) {
	if strings.TrimSpace(a.Assignee) == "" {
		return nil, cnst.ErrValidation
	}
	if _, err := s.db.GetProperty(ctx, a.PropertyID); err != nil {
		return nil, err
	}
	if _, err := s.db.GetFieldTrip(ctx, a.FieldTripID); err != nil {
		return nil, err
	}

	warning, err := s.CheckPropertyConflict(ctx, a.PropertyID)
	if err != nil {
		return nil, err
	}

	a.Status = cnst.AssignmentActive
	if err := s.db.CreatePropertyAssignment(ctx, a); err != nil {
		return nil, err
	}
	if warning != nil {
		s.logger.Info("property assigned over an active assignment",
			zap.Uint("property_id", a.PropertyID),
			zap.Uint("existing_assignment_id", warning.AssignmentID))
	}
	return warning, nil
}

// UpdateTerritoryAssignment overwrites the mutable fields of an assignment
func (s *Service) UpdateTerritoryAssignment(ctx context.Context, a *database.TerritoryAssignment) error {
	return s.db.UpdateTerritoryAssignment(ctx, a)
}

// UpdatePropertyAssignment overwrites the mutable fields of an assignment
func (s *Service) UpdatePropertyAssignment(ctx context.Context, a *database.PropertyAssignment) error {
	if strings.TrimSpace(a.Assignee) == "" {
		return cnst.ErrValidation
	}
	return s.db.UpdatePropertyAssignment(ctx, a)
}

// ConcludeTerritory marks the assignment completed. Concluding an already
// completed assignment succeeds without effect; a missing row reports false.
func (s *Service) ConcludeTerritory(ctx context.Context, id uint) (bool, error) {
	return s.db.ConcludeTerritoryAssignment(ctx, id)
}

// ConcludeProperty marks the assignment completed, with the same idempotence
// as ConcludeTerritory.
func (s *Service) ConcludeProperty(ctx context.Context, id uint) (bool, error) {
	return s.db.ConcludePropertyAssignment(ctx, id)
}

// DeleteTerritoryAssignment removes the assignment row
func (s *Service) DeleteTerritoryAssignment(ctx context.Context, id uint) error {
	deleted, err := s.db.DeleteTerritoryAssignment(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return cnst.ErrNotFound
	}
	return nil
}

// DeletePropertyAssignment removes the assignment row
func (s *Service) DeletePropertyAssignment(ctx context.Context, id uint) error {
	deleted, err := s.db.DeletePropertyAssignment(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return cnst.ErrNotFound
	}
	return nil
}

// ActiveForTerritory returns the current active assignment for the territory
func (s *Service) ActiveForTerritory(ctx context.Context, territoryID uint) (*database.TerritoryAssignment, error) {
	return s.db.GetActiveTerritoryAssignment(ctx, territoryID)
}

// ActiveForProperty returns the current active assignment for the property
func (s *Service) ActiveForProperty(ctx context.Context, propertyID uint) (*database.PropertyAssignment, error) {
	return s.db.GetActivePropertyAssignment(ctx, propertyID)
}

// DueToday returns the territory assignment whose working window contains
// today, or ErrNotFound when no territory is out.
func (s *Service) DueToday(ctx context.Context, today time.Time) (*database.TerritoryAssignment, error) {
	return s.db.GetTerritoryAssignmentDueToday(ctx, today)
}

func territoryWarning(a *database.TerritoryAssignment) *ConflictWarning {
	name := a.TerritoryName
	if name == "" {
		name = fmt.Sprintf("territory %d", a.TerritoryID)
	}
	return &ConflictWarning{
		AssignmentID: a.ID,
		Assignee:     a.Assignee,
		AssignedDate: a.AssignedDate,
		Message:      fmt.Sprintf("%s already has an active assignment since %s", name, a.AssignedDate.Format("2006-01-02")),
	}
}

func propertyWarning(a *database.PropertyAssignment) *ConflictWarning {
	name := a.PropertyName
	if name == "" {
		name = fmt.Sprintf("property %d", a.PropertyID)
	}
	return &ConflictWarning{
		AssignmentID: a.ID,
		Assignee:     a.Assignee,
		AssignedDate: a.AssignedDate,
		Message:      fmt.Sprintf("%s already has an active assignment since %s (%s)", name, a.AssignedDate.Format("2006-01-02"), a.Assignee),
	}
}
