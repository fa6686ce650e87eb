package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proveritus/estatecloud/internal/property/model"
	"github.com/proveritus/estatecloud/pkg/apperr"
	"github.com/proveritus/estatecloud/pkg/pagination"
	"github.com/proveritus/estatecloud/pkg/userclient"
)

func TestPropertyCreate_DuplicateNameExactMatch(t *testing.T) {
	db := newTestDB(t)
	properties := NewPropertyService(db, newFakeDirectory())

	input := PropertyInput{
		Name:         "Acme Tower",
		PropertyType: model.PropertyTypeCommercial,
		Address:      "1 Test Street",
	}

	_, err := properties.Create(context.Background(), testActor, input)
	require.NoError(t, err)

	_, err = properties.Create(context.Background(), testActor, input)
	require.Error(t, err)
	assert.Equal(t, apperr.KindDuplicate, apperr.KindOf(err))

	// Uniqueness is an exact match; a different casing is a different name.
	lower := input
	lower.Name = "acme tower"
	_, err = properties.Create(context.Background(), testActor, lower)
	assert.NoError(t, err)
}

func TestPropertyCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	properties := NewPropertyService(db, newFakeDirectory())

	_, err := properties.Create(context.Background(), testActor, PropertyInput{
		Name:         "  ",
		PropertyType: model.PropertyType("CASTLE"),
		Address:      "",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestPropertyDelete_GuardedByChildren(t *testing.T) {
	db := newTestDB(t)
	properties := NewPropertyService(db, newFakeDirectory())
	property := seedProperty(t, db, "Acme Tower")
	floor := seedFloor(t, db, property.ID, "Ground")

	err := properties.Delete(context.Background(), testActor, property.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.NoError(t, db.Delete(&model.Floor{}, floor.ID).Error)
	assert.NoError(t, properties.Delete(context.Background(), testActor, property.ID))
}

func TestFloorDelete_GuardedByUnits(t *testing.T) {
	db := newTestDB(t)
	floors := NewFloorService(db)
	property := seedProperty(t, db, "Acme Tower")
	floor := seedFloor(t, db, property.ID, "Ground")

	floorID := floor.ID
	unit := model.Unit{
		Name:            "U-101",
		OccupancyStatus: model.OccupancyAvailable,
		PropertyID:      property.ID,
		FloorID:         &floorID,
	}
	require.NoError(t, db.Create(&unit).Error)

	err := floors.Delete(context.Background(), testActor, floorID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.NoError(t, db.Delete(&model.Unit{}, unit.ID).Error)
	assert.NoError(t, floors.Delete(context.Background(), testActor, floorID))
}

func TestPropertyList_BatchEnrichment(t *testing.T) {
	db := newTestDB(t)
	manager := &userclient.UserRef{ID: 7, Username: "pm", FirstName: "Pat"}
	directory := newFakeDirectory(manager)
	properties := NewPropertyService(db, directory)

	managerID := uint(7)
	for _, p := range []model.Property{
		{Name: "A", PropertyType: model.PropertyTypeCommercial, Address: "1 St", ManagedBy: &managerID},
		{Name: "B", PropertyType: model.PropertyTypeCommercial, Address: "2 St", ManagedBy: &managerID},
		{Name: "C", PropertyType: model.PropertyTypeCommercial, Address: "3 St"},
	} {
		require.NoError(t, db.Create(&p).Error)
	}

	page, err := properties.List(context.Background(), nil, pagination.Pageable{Page: 0, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Content, 3)

	// One batch call resolves every manager on the page.
	assert.Equal(t, 1, directory.batchCalls)
	assert.NotNil(t, page.Content[0].ManagedByDetails)
	assert.NotNil(t, page.Content[1].ManagedByDetails)
	assert.Nil(t, page.Content[2].ManagedByDetails)
}

func TestPropertyList_BatchFailureFailsPage(t *testing.T) {
	db := newTestDB(t)
	directory := newFakeDirectory()
	directory.failAll = true
	properties := NewPropertyService(db, directory)

	managerID := uint(7)
	property := model.Property{
		Name: "A", PropertyType: model.PropertyTypeCommercial, Address: "1 St", ManagedBy: &managerID,
	}
	require.NoError(t, db.Create(&property).Error)

	_, err := properties.List(context.Background(), nil, pagination.Pageable{Page: 0, Size: 10})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
}

func TestPropertyGet_EnrichmentUnavailable(t *testing.T) {
	db := newTestDB(t)
	directory := newFakeDirectory()
	directory.failAll = true
	properties := NewPropertyService(db, directory)

	managerID := uint(7)
	property := model.Property{
		Name: "A", PropertyType: model.PropertyTypeCommercial, Address: "1 St", ManagedBy: &managerID,
	}
	require.NoError(t, db.Create(&property).Error)

	_, err := properties.GetByID(context.Background(), property.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
}

func TestPropertyGet_DanglingManagerServedWithoutDetails(t *testing.T) {
	db := newTestDB(t)
	properties := NewPropertyService(db, newFakeDirectory())

	managerID := uint(404)
	property := model.Property{
		Name: "A", PropertyType: model.PropertyTypeCommercial, Address: "1 St", ManagedBy: &managerID,
	}
	require.NoError(t, db.Create(&property).Error)

	view, err := properties.GetByID(context.Background(), property.ID)
	require.NoError(t, err)
	assert.Nil(t, view.ManagedByDetails)
}

func TestPropertySearch_NameOrAddress(t *testing.T) {
	db := newTestDB(t)
	properties := NewPropertyService(db, newFakeDirectory())

	for _, p := range []model.Property{
		{Name: "Acme Tower", PropertyType: model.PropertyTypeCommercial, Address: "1 Main Street"},
		{Name: "Riverside", PropertyType: model.PropertyTypeResidential, Address: "2 Acme Road"},
		{Name: "Hillview", PropertyType: model.PropertyTypeResidential, Address: "3 Oak Lane"},
	} {
		require.NoError(t, db.Create(&p).Error)
	}

	page, err := properties.Search(context.Background(), "acme", pagination.Pageable{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Len(t, page.Content, 2)
	assert.Equal(t, int64(2), page.TotalElements)
}

func TestPropertyStats(t *testing.T) {
	db := newTestDB(t)
	properties := NewPropertyService(db, newFakeDirectory())
	property := seedProperty(t, db, "Acme Tower")
	seedFloor(t, db, property.ID, "Ground")
	seedFloor(t, db, property.ID, "First")

	for _, u := range []model.Unit{
		{Name: "U-1", MonthlyRent: 800, OccupancyStatus: model.OccupancyOccupied, Tenant: "Initech", PropertyID: property.ID},
		{Name: "U-2", MonthlyRent: 700, OccupancyStatus: model.OccupancyAvailable, PropertyID: property.ID},
	} {
		require.NoError(t, db.Create(&u).Error)
	}

	stats, err := properties.Stats(context.Background(), property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalFloors)
	assert.Equal(t, 2, stats.TotalUnits)
	assert.Equal(t, 1, stats.OccupiedUnits)
	assert.InDelta(t, 50.0, stats.OccupancyRate, 0.0001)
	assert.InDelta(t, 800.0, stats.TotalRentalIncome, 0.0001)
	assert.InDelta(t, 1500.0, stats.PotentialRentalIncome, 0.0001)
}

func TestPropertyStats_NotFound(t *testing.T) {
	db := newTestDB(t)
	properties := NewPropertyService(db, newFakeDirectory())

	_, err := properties.Stats(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
