package database

import (
	"context"
	"errors"
	"time"

	"github.com/opencanvass/territory/internal/common/cnst"
)

// EnsureAdmin creates the bootstrap administrator when no user exists yet.
// The password hash is computed by the caller so this package stays free of
// the key-derivation dependency. The bootstrap password must be changed after
// the first login.
func (s *Store) EnsureAdmin(ctx context.Context, name, email, passwordHash string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	admin := &User{
		Name:            name,
		Email:           email,
		PasswordHash:    passwordHash,
		PermissionLevel: cnst.LevelAdmin,
		Active:          true,
	}
	return true, s.CreateUser(ctx, admin)
}

// SeedSampleData populates an empty store with one territory, a street, a few
// properties and three field trips so a fresh installation is browsable.
func (s *Store) SeedSampleData(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Territory{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	territory := &Territory{Name: "Territory 1", Description: "Block 10 - Central sector"}
	if err := s.CreateTerritory(ctx, territory); err != nil {
		return err
	}
	street := &Street{TerritoryID: territory.ID, Name: "Flower Street"}
	if err := s.CreateStreet(ctx, street); err != nil {
		return err
	}

	properties := []*Property{
		{StreetID: street.ID, HouseNumber: "123", Kind: cnst.PropertyResidential},
		{StreetID: street.ID, HouseNumber: "125", Kind: cnst.PropertyCommercial},
		{StreetID: street.ID, HouseNumber: "127", Kind: cnst.PropertyBuilding, DisplayName: "Central Building", UnitCount: 12},
		{StreetID: street.ID, HouseNumber: "129", Kind: cnst.PropertyVillage, DisplayName: "Aurora Village", UnitCount: 8},
	}
	for _, p := range properties {
		if err := s.CreateProperty(ctx, p); err != nil {
			return err
		}
	}

	today := StartOfDay(time.Now())
	trips := []*FieldTrip{
		{Name: "Outing 1", Date: today, WeekdayLabel: "Tuesday", Time: "09:00", Leader: "John"},
		{Name: "Outing 2", Date: today, WeekdayLabel: "Wednesday", Time: "19:30", Leader: "Mary"},
		{Name: "Outing 3", Date: today, WeekdayLabel: "Friday", Time: "14:00", Leader: "Peter"},
	}
	for _, ft := range trips {
		if err := s.CreateFieldTrip(ctx, ft); err != nil {
			return err
		}
	}
	return nil
}

// Bootstrap runs the first-run setup against a freshly opened Database.
// It is a no-op on stores that already hold data.
func Bootstrap(ctx context.Context, db Database, adminName, adminEmail, adminPasswordHash string) (bool, error) {
	store, ok := db.(*Store)
	if !ok {
		return false, errors.New("bootstrap requires the gorm-backed store")
	}
	created, err := store.EnsureAdmin(ctx, adminName, adminEmail, adminPasswordHash)
	if err != nil {
		return created, err
	}
	if err := store.SeedSampleData(ctx); err != nil {
		return created, err
	}
	return created, nil
}
