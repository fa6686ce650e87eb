package service

import "github.com/proveritus/estatecloud/internal/property/model"

// OccupancySummary holds per-status unit counts and rates for a set of units.
// Rates are percentages in [0,100]; all rates are 0 when there are no units.
type OccupancySummary struct {
	TotalUnits            int     `json:"total_units"`
	OccupiedUnits         int     `json:"occupied_units"`
	VacantUnits           int     `json:"vacant_units"`
	ReservedUnits         int     `json:"reserved_units"`
	BlockedUnits          int     `json:"blocked_units"`
	NotAvailableUnits     int     `json:"not_available_units"`
	UnderMaintenanceUnits int     `json:"under_maintenance_units"`
	OccupancyRate         float64 `json:"occupancy_rate"`
	VacancyRate           float64 `json:"vacancy_rate"`
	ReservedRate          float64 `json:"reserved_rate"`
	BlockedRate           float64 `json:"blocked_rate"`
	NotAvailableRate      float64 `json:"not_available_rate"`
	UnderMaintenanceRate  float64 `json:"under_maintenance_rate"`
}

// PropertyStats extends the occupancy summary with floor and income totals
// for a whole property.
type PropertyStats struct {
	TotalFloors int64 `json:"total_floors"`
	OccupancySummary
	TotalRentalIncome     float64 `json:"total_rental_income"`
	PotentialRentalIncome float64 `json:"potential_rental_income"`
}

// SummarizeOccupancy derives counts and rates per occupancy status from units.
func SummarizeOccupancy(units []model.Unit) OccupancySummary {
	counts := make(map[model.OccupancyStatus]int, len(model.AllOccupancyStatuses))
	for _, u := range units {
		counts[u.OccupancyStatus]++
	}

	total := len(units)
	rate := func(count int) float64 {
		if total == 0 {
			return 0
		}
		return float64(count) * 100.0 / float64(total)
	}

	return OccupancySummary{
		TotalUnits:            total,
		OccupiedUnits:         counts[model.OccupancyOccupied],
		VacantUnits:           counts[model.OccupancyAvailable],
		ReservedUnits:         counts[model.OccupancyReserved],
		BlockedUnits:          counts[model.OccupancyBlocked],
		NotAvailableUnits:     counts[model.OccupancyNotAvailable],
		UnderMaintenanceUnits: counts[model.OccupancyUnderMaintenance],
		OccupancyRate:         rate(counts[model.OccupancyOccupied]),
		VacancyRate:           rate(counts[model.OccupancyAvailable]),
		ReservedRate:          rate(counts[model.OccupancyReserved]),
		BlockedRate:           rate(counts[model.OccupancyBlocked]),
		NotAvailableRate:      rate(counts[model.OccupancyNotAvailable]),
		UnderMaintenanceRate:  rate(counts[model.OccupancyUnderMaintenance]),
	}
}

// SummarizeProperty derives full property stats from the property's floors
// count and its units.
func SummarizeProperty(totalFloors int64, units []model.Unit) PropertyStats {
	stats := PropertyStats{
		TotalFloors:      totalFloors,
		OccupancySummary: SummarizeOccupancy(units),
	}
	for _, u := range units {
		stats.PotentialRentalIncome += u.MonthlyRent
		if u.OccupancyStatus == model.OccupancyOccupied {
			stats.TotalRentalIncome += u.MonthlyRent
		}
	}
	return stats
}
