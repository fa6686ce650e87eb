package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/proveritus/estatecloud/internal/property/model"
)

func unitWithStatus(status model.OccupancyStatus, rent float64) model.Unit {
	return model.Unit{OccupancyStatus: status, MonthlyRent: rent}
}

func TestSummarizeOccupancy_CountsAndRates(t *testing.T) {
	units := []model.Unit{
		unitWithStatus(model.OccupancyOccupied, 100),
		unitWithStatus(model.OccupancyOccupied, 200),
		unitWithStatus(model.OccupancyAvailable, 150),
		unitWithStatus(model.OccupancyReserved, 120),
		unitWithStatus(model.OccupancyBlocked, 0),
		unitWithStatus(model.OccupancyNotAvailable, 80),
		unitWithStatus(model.OccupancyUnderMaintenance, 90),
		unitWithStatus(model.OccupancyAvailable, 110),
	}

	summary := SummarizeOccupancy(units)

	assert.Equal(t, 8, summary.TotalUnits)
	assert.Equal(t, 2, summary.OccupiedUnits)
	assert.Equal(t, 2, summary.VacantUnits)
	assert.Equal(t, 1, summary.ReservedUnits)
	assert.Equal(t, 1, summary.BlockedUnits)
	assert.Equal(t, 1, summary.NotAvailableUnits)
	assert.Equal(t, 1, summary.UnderMaintenanceUnits)

	// The per-status counts partition the unit set.
	sum := summary.OccupiedUnits + summary.VacantUnits + summary.ReservedUnits +
		summary.BlockedUnits + summary.NotAvailableUnits + summary.UnderMaintenanceUnits
	assert.Equal(t, summary.TotalUnits, sum)

	assert.InDelta(t, 25.0, summary.OccupancyRate, 0.0001)
	assert.InDelta(t, 25.0, summary.VacancyRate, 0.0001)
	assert.InDelta(t, 12.5, summary.ReservedRate, 0.0001)

	for _, rate := range []float64{
		summary.OccupancyRate, summary.VacancyRate, summary.ReservedRate,
		summary.BlockedRate, summary.NotAvailableRate, summary.UnderMaintenanceRate,
	} {
		assert.GreaterOrEqual(t, rate, 0.0)
		assert.LessOrEqual(t, rate, 100.0)
	}
}

func TestSummarizeOccupancy_NoUnits(t *testing.T) {
	summary := SummarizeOccupancy(nil)

	assert.Equal(t, 0, summary.TotalUnits)
	assert.Zero(t, summary.OccupancyRate)
	assert.Zero(t, summary.VacancyRate)
	assert.Zero(t, summary.ReservedRate)
	assert.Zero(t, summary.BlockedRate)
	assert.Zero(t, summary.NotAvailableRate)
	assert.Zero(t, summary.UnderMaintenanceRate)
}

func TestSummarizeProperty_Income(t *testing.T) {
	units := []model.Unit{
		unitWithStatus(model.OccupancyOccupied, 1000),
		unitWithStatus(model.OccupancyOccupied, 500),
		unitWithStatus(model.OccupancyAvailable, 700),
		unitWithStatus(model.OccupancyReserved, 300),
	}

	stats := SummarizeProperty(3, units)

	assert.Equal(t, int64(3), stats.TotalFloors)
	assert.Equal(t, 4, stats.TotalUnits)
	assert.InDelta(t, 1500.0, stats.TotalRentalIncome, 0.0001)
	assert.InDelta(t, 2500.0, stats.PotentialRentalIncome, 0.0001)
}
