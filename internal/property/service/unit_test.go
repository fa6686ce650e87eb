package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proveritus/estatecloud/internal/property/model"
	"github.com/proveritus/estatecloud/pkg/apperr"
)

func TestUnitCreate_PSMDerivesMonthlyRent(t *testing.T) {
	db := newTestDB(t)
	floors := NewFloorService(db)
	units := NewUnitService(db, floors)
	property := seedProperty(t, db, "Acme Tower")

	unit, err := units.Create(context.Background(), testActor, UnitInput{
		Name:            "U-101",
		Size:            20,
		RentType:        model.RentTypePSM,
		RatePerSqm:      50,
		OccupancyStatus: model.OccupancyAvailable,
		PropertyID:      property.ID,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, unit.MonthlyRent, 0.0001)
}

func TestUnitUpdate_FixedRentLeftUntouched(t *testing.T) {
	db := newTestDB(t)
	floors := NewFloorService(db)
	units := NewUnitService(db, floors)
	property := seedProperty(t, db, "Acme Tower")

	created, err := units.Create(context.Background(), testActor, UnitInput{
		Name:            "U-101",
		Size:            20,
		RentType:        model.RentTypePSM,
		RatePerSqm:      50,
		OccupancyStatus: model.OccupancyAvailable,
		PropertyID:      property.ID,
	})
	require.NoError(t, err)
	require.InDelta(t, 1000.0, created.MonthlyRent, 0.0001)

	// Switching to FIXED keeps the previously-derived rent as provided.
	updated, err := units.Update(context.Background(), testActor, created.ID, UnitInput{
		Name:            "U-101",
		Size:            20,
		RentType:        model.RentTypeFixed,
		RatePerSqm:      50,
		MonthlyRent:     created.MonthlyRent,
		OccupancyStatus: model.OccupancyAvailable,
		PropertyID:      property.ID,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, updated.MonthlyRent, 0.0001)
}

func TestUnitCreate_DuplicateNameInProperty(t *testing.T) {
	db := newTestDB(t)
	floors := NewFloorService(db)
	units := NewUnitService(db, floors)
	property := seedProperty(t, db, "Acme Tower")

	input := UnitInput{
		Name:            "U-101",
		Size:            10,
		RentType:        model.RentTypeFixed,
		MonthlyRent:     500,
		OccupancyStatus: model.OccupancyAvailable,
		PropertyID:      property.ID,
	}

	_, err := units.Create(context.Background(), testActor, input)
	require.NoError(t, err)

	_, err = units.Create(context.Background(), testActor, input)
	require.Error(t, err)
	assert.Equal(t, apperr.KindDuplicate, apperr.KindOf(err))
}

func TestUnitOccupancy_TenantClearedWhenNotOccupied(t *testing.T) {
	db := newTestDB(t)
	floors := NewFloorService(db)
	units := NewUnitService(db, floors)
	property := seedProperty(t, db, "Acme Tower")

	unit, err := units.Create(context.Background(), testActor, UnitInput{
		Name:            "U-101",
		Size:            10,
		RentType:        model.RentTypeFixed,
		MonthlyRent:     500,
		OccupancyStatus: model.OccupancyOccupied,
		Tenant:          "Initech",
		PropertyID:      property.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "Initech", unit.Tenant)

	vacated, err := units.UpdateOccupancy(context.Background(), testActor, unit.ID, model.OccupancyAvailable, "ignored")
	require.NoError(t, err)
	assert.Empty(t, vacated.Tenant)

	occupied, err := units.UpdateOccupancy(context.Background(), testActor, unit.ID, model.OccupancyOccupied, "Globex")
	require.NoError(t, err)
	assert.Equal(t, "Globex", occupied.Tenant)
}

func TestFloorRefresh_Idempotent(t *testing.T) {
	db := newTestDB(t)
	floors := NewFloorService(db)
	units := NewUnitService(db, floors)
	property := seedProperty(t, db, "Acme Tower")
	floor := seedFloor(t, db, property.ID, "Ground")

	floorID := floor.ID
	_, err := units.Create(context.Background(), testActor, UnitInput{
		Name:            "U-101",
		Size:            10,
		RentType:        model.RentTypeFixed,
		MonthlyRent:     500,
		OccupancyStatus: model.OccupancyOccupied,
		Tenant:          "Initech",
		PropertyID:      property.ID,
		FloorID:         &floorID,
	})
	require.NoError(t, err)
	_, err = units.Create(context.Background(), testActor, UnitInput{
		Name:            "U-102",
		Size:            10,
		RentType:        model.RentTypeFixed,
		MonthlyRent:     500,
		OccupancyStatus: model.OccupancyAvailable,
		PropertyID:      property.ID,
		FloorID:         &floorID,
	})
	require.NoError(t, err)

	first, err := floors.RefreshCounters(context.Background(), floorID)
	require.NoError(t, err)
	second, err := floors.RefreshCounters(context.Background(), floorID)
	require.NoError(t, err)

	assert.Equal(t, 2, first.NumberOfUnits)
	assert.Equal(t, 1, first.OccupiedUnits)
	assert.Equal(t, 1, first.VacantUnits)
	assert.Equal(t, first.NumberOfUnits, second.NumberOfUnits)
	assert.Equal(t, first.OccupiedUnits, second.OccupiedUnits)
	assert.Equal(t, first.VacantUnits, second.VacantUnits)
}

func TestUnitMove_RefreshesBothFloors(t *testing.T) {
	db := newTestDB(t)
	floors := NewFloorService(db)
	units := NewUnitService(db, floors)
	property := seedProperty(t, db, "Acme Tower")
	floorA := seedFloor(t, db, property.ID, "A")
	floorB := seedFloor(t, db, property.ID, "B")

	floorAID, floorBID := floorA.ID, floorB.ID
	unit, err := units.Create(context.Background(), testActor, UnitInput{
		Name:            "U-101",
		Size:            10,
		RentType:        model.RentTypeFixed,
		MonthlyRent:     500,
		OccupancyStatus: model.OccupancyOccupied,
		Tenant:          "Initech",
		PropertyID:      property.ID,
		FloorID:         &floorAID,
	})
	require.NoError(t, err)

	var before model.Floor
	require.NoError(t, db.First(&before, floorAID).Error)
	require.Equal(t, 1, before.NumberOfUnits)

	_, err = units.Update(context.Background(), testActor, unit.ID, UnitInput{
		Name:            "U-101",
		Size:            10,
		RentType:        model.RentTypeFixed,
		MonthlyRent:     500,
		OccupancyStatus: model.OccupancyOccupied,
		Tenant:          "Initech",
		PropertyID:      property.ID,
		FloorID:         &floorBID,
	})
	require.NoError(t, err)

	// The floor the unit left must not keep stale counters.
	var oldFloor, newFloor model.Floor
	require.NoError(t, db.First(&oldFloor, floorAID).Error)
	require.NoError(t, db.First(&newFloor, floorBID).Error)
	assert.Equal(t, 0, oldFloor.NumberOfUnits)
	assert.Equal(t, 0, oldFloor.OccupiedUnits)
	assert.Equal(t, 1, newFloor.NumberOfUnits)
	assert.Equal(t, 1, newFloor.OccupiedUnits)
}

func TestUnitRentalIncomeAndCount(t *testing.T) {
	db := newTestDB(t)
	floors := NewFloorService(db)
	units := NewUnitService(db, floors)
	property := seedProperty(t, db, "Acme Tower")

	for _, u := range []UnitInput{
		{Name: "U-1", Size: 10, RentType: model.RentTypeFixed, MonthlyRent: 800, OccupancyStatus: model.OccupancyOccupied, Tenant: "Initech", PropertyID: property.ID},
		{Name: "U-2", Size: 10, RentType: model.RentTypeFixed, MonthlyRent: 600, OccupancyStatus: model.OccupancyOccupied, Tenant: "Globex", PropertyID: property.ID},
		{Name: "U-3", Size: 10, RentType: model.RentTypeFixed, MonthlyRent: 700, OccupancyStatus: model.OccupancyAvailable, PropertyID: property.ID},
	} {
		_, err := units.Create(context.Background(), testActor, u)
		require.NoError(t, err)
	}

	income, err := units.RentalIncome(context.Background(), property.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1400.0, income, 0.0001)

	count, err := units.CountByProperty(context.Background(), property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestUnitMutation_ToleratesVanishedFloor(t *testing.T) {
	db := newTestDB(t)
	floors := NewFloorService(db)
	units := NewUnitService(db, floors)
	property := seedProperty(t, db, "Acme Tower")
	floor := seedFloor(t, db, property.ID, "Ground")

	floorID := floor.ID
	unit, err := units.Create(context.Background(), testActor, UnitInput{
		Name:            "U-101",
		Size:            10,
		RentType:        model.RentTypeFixed,
		MonthlyRent:     500,
		OccupancyStatus: model.OccupancyOccupied,
		Tenant:          "Initech",
		PropertyID:      property.ID,
		FloorID:         &floorID,
	})
	require.NoError(t, err)

	// Floor vanishes concurrently; the counter refresh becomes a no-op.
	require.NoError(t, db.Delete(&model.Floor{}, floorID).Error)

	_, err = units.UpdateOccupancy(context.Background(), testActor, unit.ID, model.OccupancyAvailable, "")
	require.NoError(t, err)
}
