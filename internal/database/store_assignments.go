package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/opencanvass/territory/internal/common/cnst"
)

// --- Territory assignments ---

func (s *Store) CreateTerritoryAssignment(ctx context.Context, a *TerritoryAssignment) error {
	if a.Status == "" {
		a.Status = cnst.AssignmentActive
	}
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *Store) GetTerritoryAssignment(ctx context.Context, id uint) (*TerritoryAssignment, error) {
	var a TerritoryAssignment
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	if err := s.fillTerritoryAssignmentNames(ctx, []*TerritoryAssignment{&a}); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListTerritoryAssignments(ctx context.Context) ([]*TerritoryAssignment, error) {
	return s.findTerritoryAssignments(ctx, s.db.WithContext(ctx).Order("assigned_date DESC, id DESC"))
}

func (s *Store) ListActiveTerritoryAssignments(ctx context.Context) ([]*TerritoryAssignment, error) {
	return s.findTerritoryAssignments(ctx, s.db.WithContext(ctx).
		Where("status = ?", cnst.AssignmentActive).
		Order("assigned_date DESC, id DESC"))
}

func (s *Store) ListTerritoryAssignmentsByTerritory(ctx context.Context, territoryID uint) ([]*TerritoryAssignment, error) {
	return s.findTerritoryAssignments(ctx, s.db.WithContext(ctx).
		Where("territory_id = ?", territoryID).
		Order("assigned_date DESC, id DESC"))
}

// GetActiveTerritoryAssignment orders by assigned date so the result is
// deterministic when a territory carries overlapping active assignments.
func (s *Store) GetActiveTerritoryAssignment(ctx context.Context, territoryID uint) (*TerritoryAssignment, error) {
	var a TerritoryAssignment
	err := s.db.WithContext(ctx).
		Where("territory_id = ? AND status = ?", territoryID, cnst.AssignmentActive).
		Order("assigned_date DESC, id DESC").
		First(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.fillTerritoryAssignmentNames(ctx, []*TerritoryAssignment{&a}); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetTerritoryAssignmentDueToday(ctx context.Context, today time.Time) (*TerritoryAssignment, error) {
	var a TerritoryAssignment
	err := s.db.WithContext(ctx).
		Where("status = ? AND assigned_date <= ? AND (return_date IS NULL OR return_date >= ?)",
			cnst.AssignmentActive, today, today).
		Order("assigned_date DESC, id DESC").
		First(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.fillTerritoryAssignmentNames(ctx, []*TerritoryAssignment{&a}); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListTerritoryAssignmentsDueBetween(ctx context.Context, from, to time.Time) ([]*TerritoryAssignment, error) {
	return s.findTerritoryAssignments(ctx, s.db.WithContext(ctx).
		Where("status = ? AND return_date IS NOT NULL AND return_date >= ? AND return_date <= ?",
			cnst.AssignmentActive, from, to).
		Order("return_date"))
}

func (s *Store) UpdateTerritoryAssignment(ctx context.Context, a *TerritoryAssignment) error {
	res := s.db.WithContext(ctx).Model(&TerritoryAssignment{}).Where("id = ?", a.ID).
		Select("territory_id", "field_trip_id", "assigned_date", "return_date", "assignee", "status").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return cnst.ErrNotFound
	}
	return nil
}

func (s *Store) ConcludeTerritoryAssignment(ctx context.Context, id uint) (bool, error) {
	return s.concludeAssignment(ctx, &TerritoryAssignment{}, id)
}

func (s *Store) DeleteTerritoryAssignment(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&TerritoryAssignment{}, id)
	return res.RowsAffected > 0, res.Error
}

func (s *Store) findTerritoryAssignments(ctx context.Context, q *gorm.DB) ([]*TerritoryAssignment, error) {
	var out []*TerritoryAssignment
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	if err := s.fillTerritoryAssignmentNames(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) fillTerritoryAssignmentNames(ctx context.Context, list []*TerritoryAssignment) error {
	if len(list) == 0 {
		return nil
	}
	territoryIDs := make([]uint, 0, len(list))
	tripIDs := make([]uint, 0, len(list))
	for _, a := range list {
		territoryIDs = append(territoryIDs, a.TerritoryID)
		tripIDs = append(tripIDs, a.FieldTripID)
	}
	territoryName, err := s.namesByID(ctx, &Territory{}, territoryIDs)
	if err != nil {
		return err
	}
	tripName, err := s.namesByID(ctx, &FieldTrip{}, tripIDs)
	if err != nil {
		return err
	}
	for _, a := range list {
		a.TerritoryName = territoryName[a.TerritoryID]
		a.FieldTripName = tripName[a.FieldTripID]
	}
	return nil
}

// namesByID loads id->name for the given model rows
func (s *Store) namesByID(ctx context.Context, model any, ids []uint) (map[uint]string, error) {
	type row struct {
		ID   uint
		Name string
	}
	var rows []row
	if err := s.db.WithContext(ctx).Model(model).Where("id IN ?", ids).
		Select("id", "name").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]string, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Name
	}
	return out, nil
}

// concludeAssignment flips active rows to completed. The existence check runs
// first so re-concluding a completed row stays a truthful no-op on every
// supported engine regardless of how its driver counts affected rows.
func (s *Store) concludeAssignment(ctx context.Context, model any, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	err := s.db.WithContext(ctx).Model(model).
		Where("id = ? AND status = ?", id, cnst.AssignmentActive).
		Update("status", cnst.AssignmentCompleted).Error
	return err == nil, err
}

// --- Property assignments ---

func (s *Store) CreatePropertyAssignment(ctx context.Context, a *PropertyAssignment) error {
	if a.Status == "" {
		a.Status = cnst.AssignmentActive
	}
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *Store) GetPropertyAssignment(ctx context.Context, id uint) (*PropertyAssignment, error) {
	var a PropertyAssignment
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	if err := s.fillPropertyAssignmentNames(ctx, []*PropertyAssignment{&a}); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListPropertyAssignments(ctx context.Context) ([]*PropertyAssignment, error) {
	return s.findPropertyAssignments(ctx, s.db.WithContext(ctx).Order("assigned_date DESC, id DESC"))
}

func (s *Store) ListActivePropertyAssignments(ctx context.Context) ([]*PropertyAssignment, error) {
	return s.findPropertyAssignments(ctx, s.db.WithContext(ctx).
		Where("status = ?", cnst.AssignmentActive).
		Order("assigned_date DESC, id DESC"))
}

func (s *Store) GetActivePropertyAssignment(ctx context.Context, propertyID uint) (*PropertyAssignment, error) {
	var a PropertyAssignment
	err := s.db.WithContext(ctx).
		Where("property_id = ? AND status = ?", propertyID, cnst.AssignmentActive).
		Order("assigned_date DESC, id DESC").
		First(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.fillPropertyAssignmentNames(ctx, []*PropertyAssignment{&a}); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListPropertyAssignmentsDueBetween(ctx context.Context, from, to time.Time) ([]*PropertyAssignment, error) {
	return s.findPropertyAssignments(ctx, s.db.WithContext(ctx).
		Where("status = ? AND return_date IS NOT NULL AND return_date >= ? AND return_date <= ?",
			cnst.AssignmentActive, from, to).
		Order("return_date"))
}

func (s *Store) UpdatePropertyAssignment(ctx context.Context, a *PropertyAssignment) error {
	res := s.db.WithContext(ctx).Model(&PropertyAssignment{}).Where("id = ?", a.ID).
		Select("property_id", "field_trip_id", "assigned_date", "return_date", "assignee", "status").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return cnst.ErrNotFound
	}
	return nil
}

func (s *Store) ConcludePropertyAssignment(ctx context.Context, id uint) (bool, error) {
	return s.concludeAssignment(ctx, &PropertyAssignment{}, id)
}

func (s *Store) DeletePropertyAssignment(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&PropertyAssignment{}, id)
	return res.RowsAffected > 0, res.Error
}

func (s *Store) findPropertyAssignments(ctx context.Context, q *gorm.DB) ([]*PropertyAssignment, error) {
	var out []*PropertyAssignment
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	if err := s.fillPropertyAssignmentNames(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) fillPropertyAssignmentNames(ctx context.Context, list []*PropertyAssignment) error {
	if len(list) == 0 {
		return nil
	}
	propertyIDs := make([]uint, 0, len(list))
	tripIDs := make([]uint, 0, len(list))
	for _, a := range list {
		propertyIDs = append(propertyIDs, a.PropertyID)
		tripIDs = append(tripIDs, a.FieldTripID)
	}
	var props []*Property
	if err := s.db.WithContext(ctx).Where("id IN ?", propertyIDs).Find(&props).Error; err != nil {
		return err
	}
	if err := s.fillPropertyNames(ctx, props); err != nil {
		return err
	}
	propByID := make(map[uint]*Property, len(props))
	for _, p := range props {
		propByID[p.ID] = p
	}
	tripName, err := s.namesByID(ctx, &FieldTrip{}, tripIDs)
	if err != nil {
		return err
	}
	for _, a := range list {
		if p, ok := propByID[a.PropertyID]; ok {
			a.PropertyNumber = p.HouseNumber
			a.PropertyName = p.DisplayName
			a.PropertyKind = p.Kind
			a.StreetName = p.StreetName
			a.TerritoryName = p.TerritoryName
		}
		a.FieldTripName = tripName[a.FieldTripID]
	}
	return nil
}

// --- Visits ---

func (s *Store) CreateVisit(ctx context.Context, v *Visit) error {
	if err := s.requireRow(ctx, &Property{}, v.PropertyID); err != nil {
		return err
	}
	if v.UnitID != nil {
		if err := s.requireRow(ctx, &Unit{}, *v.UnitID); err != nil {
			return err
		}
	}
	return s.db.WithContext(ctx).Create(v).Error
}

func (s *Store) ListVisitsByProperty(ctx context.Context, propertyID uint) ([]*Visit, error) {
	var out []*Visit
	err := s.db.WithContext(ctx).Where("property_id = ?", propertyID).
		Order("date DESC, id DESC").Find(&out).Error
	return out, err
}

func (s *Store) LatestVisit(ctx context.Context, propertyID uint, unitID *uint) (*Visit, error) {
	q := s.db.WithContext(ctx).Where("property_id = ?", propertyID)
	if unitID != nil {
		q = q.Where("unit_id = ?", *unitID)
	} else {
		q = q.Where("unit_id IS NULL")
	}
	var v Visit
	if err := q.Order("date DESC, id DESC").First(&v).Error; err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}
