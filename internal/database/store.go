package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/opencanvass/territory/internal/common/cnst"
)

// Store implements Database on top of gorm. The dialector is chosen by the
// factory, so one implementation serves sqlite, postgres and mysql.
type Store struct {
	db *gorm.DB
}

func newStore(dialector gorm.Dialector) (*Store, error) {
	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := gormDB.AutoMigrate(
		&Territory{}, &Street{}, &Property{}, &Unit{}, &PropertyHistory{},
		&FieldTrip{}, &TerritoryAssignment{}, &PropertyAssignment{}, &Visit{},
		&User{}, &ActivityLog{}, &Notification{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: gormDB}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cnst.ErrNotFound
	}
	return err
}

// --- Territories ---

func (s *Store) CreateTerritory(ctx context.Context, t *Territory) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *Store) GetTerritory(ctx context.Context, id uint) (*Territory, error) {
	var t Territory
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *Store) ListTerritories(ctx context.Context) ([]*Territory, error) {
	var out []*Territory
	err := s.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

func (s *Store) UpdateTerritory(ctx context.Context, t *Territory) error {
	res := s.db.WithContext(ctx).Model(&Territory{}).Where("id = ?", t.ID).
		Select("name", "description", "last_visited").Updates(t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return cnst.ErrNotFound
	}
	return nil
}

// DeleteTerritory cascades at the application layer so the behavior does not
// depend on the engine's foreign-key configuration.
func (s *Store) DeleteTerritory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var streetIDs []uint
		if err := tx.Model(&Street{}).Where("territory_id = ?", id).Pluck("id", &streetIDs).Error; err != nil {
			return err
		}
		if len(streetIDs) > 0 {
			if err := deletePropertiesOfStreets(tx, streetIDs); err != nil {
				return err
			}
			if err := tx.Where("territory_id = ?", id).Delete(&Street{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("territory_id = ?", id).Delete(&TerritoryAssignment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Territory{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return cnst.ErrNotFound
		}
		return nil
	})
}

func deletePropertiesOfStreets(tx *gorm.DB, streetIDs []uint) error {
	var propertyIDs []uint
	if err := tx.Model(&Property{}).Where("street_id IN ?", streetIDs).Pluck("id", &propertyIDs).Error; err != nil {
		return err
	}
	if len(propertyIDs) == 0 {
		return nil
	}
	for _, model := range []any{&Visit{}, &Unit{}, &PropertyHistory{}, &PropertyAssignment{}} {
		if err := tx.Where("property_id IN ?", propertyIDs).Delete(model).Error; err != nil {
			return err
		}
	}
	return tx.Where("street_id IN ?", streetIDs).Delete(&Property{}).Error
}

// --- Streets ---

func (s *Store) CreateStreet(ctx context.Context, st *Street) error {
	if err := s.requireRow(ctx, &Territory{}, st.TerritoryID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(st).Error
}

func (s *Store) GetStreet(ctx context.Context, id uint) (*Street, error) {
	var st Street
	if err := s.db.WithContext(ctx).First(&st, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

func (s *Store) ListStreets(ctx context.Context, territoryID uint) ([]*Street, error) {
	var out []*Street
	err := s.db.WithContext(ctx).Where("territory_id = ?", territoryID).Order("name").Find(&out).Error
	return out, err
}

func (s *Store) DeleteStreet(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deletePropertiesOfStreets(tx, []uint{id}); err != nil {
			return err
		}
		res := tx.Delete(&Street{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return cnst.ErrNotFound
		}
		return nil
	})
}

// --- Properties ---

func (s *Store) CreateProperty(ctx context.Context, p *Property) error {
	if err := s.requireRow(ctx, &Street{}, p.StreetID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if !p.Kind.IsMultiUnit() || p.UnitCount <= 0 {
			return nil
		}
		units := make([]Unit, 0, p.UnitCount)
		for i := 1; i <= p.UnitCount; i++ {
			units = append(units, Unit{
				PropertyID: p.ID,
				Label:      fmt.Sprintf("%s %02d", p.Kind.UnitPrefix(), i),
			})
		}
		return tx.Create(&units).Error
	})
}

func (s *Store) GetProperty(ctx context.Context, id uint) (*Property, error) {
	var p Property
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) ListPropertiesByStreet(ctx context.Context, streetID uint) ([]*Property, error) {
	var out []*Property
	err := s.db.WithContext(ctx).Where("street_id = ?", streetID).Order("house_number").Find(&out).Error
	return out, err
}

func (s *Store) ListPropertiesByKind(ctx context.Context, kind cnst.PropertyKind) ([]*Property, error) {
	var out []*Property
	err := s.db.WithContext(ctx).Where("kind = ?", kind).Order("house_number").Find(&out).Error
	return out, err
}

func (s *Store) ListMultiUnitProperties(ctx context.Context) ([]*Property, error) {
	var out []*Property
	err := s.db.WithContext(ctx).
		Where("kind IN ?", []cnst.PropertyKind{cnst.PropertyBuilding, cnst.PropertyVillage}).
		Order("house_number").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if err := s.fillPropertyNames(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// fillPropertyNames populates the joined street and territory display names
func (s *Store) fillPropertyNames(ctx context.Context, props []*Property) error {
	if len(props) == 0 {
		return nil
	}
	streetIDs := make([]uint, 0, len(props))
	for _, p := range props {
		streetIDs = append(streetIDs, p.StreetID)
	}
	var streets []Street
	if err := s.db.WithContext(ctx).Where("id IN ?", streetIDs).Find(&streets).Error; err != nil {
		return err
	}
	territoryIDs := make([]uint, 0, len(streets))
	streetByID := make(map[uint]Street, len(streets))
	for _, st := range streets {
		streetByID[st.ID] = st
		territoryIDs = append(territoryIDs, st.TerritoryID)
	}
	var territories []Territory
	if err := s.db.WithContext(ctx).Where("id IN ?", territoryIDs).Find(&territories).Error; err != nil {
		return err
	}
	territoryName := make(map[uint]string, len(territories))
	for _, t := range territories {
		territoryName[t.ID] = t.Name
	}
	for _, p := range props {
		if st, ok := streetByID[p.StreetID]; ok {
			p.StreetName = st.Name
			p.TerritoryName = territoryName[st.TerritoryID]
		}
	}
	return nil
}

func (s *Store) UpdateProperty(ctx context.Context, p *Property) error {
	// Unit rows are never reconciled here; unit_count edits change the field only.
	res := s.db.WithContext(ctx).Model(&Property{}).Where("id = ?", p.ID).
		Select("street_id", "house_number", "kind", "display_name", "unit_count",
			"gate_type", "access_type", "notes").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return cnst.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProperty(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&Visit{}, &Unit{}, &PropertyHistory{}, &PropertyAssignment{}} {
			if err := tx.Where("property_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&Property{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return cnst.ErrNotFound
		}
		return nil
	})
}

func (s *Store) ListUnits(ctx context.Context, propertyID uint) ([]*Unit, error) {
	var out []*Unit
	err := s.db.WithContext(ctx).Where("property_id = ?", propertyID).Order("label").Find(&out).Error
	return out, err
}

func (s *Store) UpdateUnit(ctx context.Context, u *Unit) error {
	res := s.db.WithContext(ctx).Model(&Unit{}).Where("id = ?", u.ID).
		Select("label", "notes").Updates(u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return cnst.ErrNotFound
	}
	return nil
}

func (s *Store) AddPropertyHistory(ctx context.Context, h *PropertyHistory) error {
	if err := s.requireRow(ctx, &Property{}, h.PropertyID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(h).Error
}

func (s *Store) ListPropertyHistory(ctx context.Context, propertyID uint) ([]*PropertyHistory, error) {
	var out []*PropertyHistory
	err := s.db.WithContext(ctx).Where("property_id = ?", propertyID).
		Order("date DESC").Find(&out).Error
	return out, err
}

// --- Field trips ---

func (s *Store) CreateFieldTrip(ctx context.Context, ft *FieldTrip) error {
	return s.db.WithContext(ctx).Create(ft).Error
}

func (s *Store) GetFieldTrip(ctx context.Context, id uint) (*FieldTrip, error) {
	var ft FieldTrip
	if err := s.db.WithContext(ctx).First(&ft, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ft, nil
}

func (s *Store) ListFieldTrips(ctx context.Context) ([]*FieldTrip, error) {
	var out []*FieldTrip
	err := s.db.WithContext(ctx).Order("date DESC").Find(&out).Error
	return out, err
}

func (s *Store) ListUpcomingFieldTrips(ctx context.Context, from time.Time, limit int) ([]*FieldTrip, error) {
	var out []*FieldTrip
	err := s.db.WithContext(ctx).Where("date >= ?", from).
		Order("date").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Store) UpdateFieldTrip(ctx context.Context, ft *FieldTrip) error {
	res := s.db.WithContext(ctx).Model(&FieldTrip{}).Where("id = ?", ft.ID).
		Select("name", "date", "weekday_label", "time", "leader").Updates(ft)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return cnst.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteFieldTrip(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("field_trip_id = ?", id).Delete(&TerritoryAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("field_trip_id = ?", id).Delete(&PropertyAssignment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&FieldTrip{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return cnst.ErrNotFound
		}
		return nil
	})
}

// requireRow returns ErrNotFound unless a row with the id exists
func (s *Store) requireRow(ctx context.Context, model any, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return cnst.ErrNotFound
	}
	return nil
}
