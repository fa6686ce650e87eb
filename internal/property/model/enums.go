package model

// PropertyType classifies a property by its intended use.
type PropertyType string

const (
	PropertyTypeResidential PropertyType = "RESIDENTIAL"
	PropertyTypeCommercial  PropertyType = "COMMERCIAL"
	PropertyTypeMixedUse    PropertyType = "MIXED_USE"
	PropertyTypeIndustrial  PropertyType = "INDUSTRIAL"
)

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeResidential, PropertyTypeCommercial, PropertyTypeMixedUse, PropertyTypeIndustrial:
		return true
	}
	return false
}

// RentType selects how a unit's monthly rent is determined.
type RentType string

const (
	// RentTypeFixed means monthly rent is set directly.
	RentTypeFixed RentType = "FIXED"
	// RentTypePSM means monthly rent is derived as ratePerSqm * size.
	RentTypePSM RentType = "PSM"
)

// Valid reports whether r is a known rent type.
func (r RentType) Valid() bool {
	return r == RentTypeFixed || r == RentTypePSM
}

// OccupancyStatus tracks the letting state of a unit.
type OccupancyStatus string

const (
	OccupancyOccupied         OccupancyStatus = "OCCUPIED"
	OccupancyReserved         OccupancyStatus = "RESERVED"
	OccupancyAvailable        OccupancyStatus = "AVAILABLE"
	OccupancyBlocked          OccupancyStatus = "BLOCKED"
	OccupancyUnderMaintenance OccupancyStatus = "UNDER_MAINTENANCE"
	OccupancyNotAvailable     OccupancyStatus = "NOT_AVAILABLE"
)

// AllOccupancyStatuses lists every occupancy status in a stable order.
var AllOccupancyStatuses = []OccupancyStatus{
	OccupancyOccupied,
	OccupancyReserved,
	OccupancyAvailable,
	OccupancyBlocked,
	OccupancyUnderMaintenance,
	OccupancyNotAvailable,
}

// Valid reports whether s is a known occupancy status.
func (s OccupancyStatus) Valid() bool {
	for _, known := range AllOccupancyStatuses {
		if s == known {
			return true
		}
	}
	return false
}
