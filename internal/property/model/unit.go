package model

// Unit is a rentable space inside a property, optionally assigned to a floor.
// MonthlyRent is derived from RatePerSqm and Size when RentType is PSM;
// Tenant is meaningful only while the unit is OCCUPIED.
type Unit struct {
	Base
	Name            string          `json:"name" gorm:"not null;index:idx_unit_name_property"`
	Size            float64         `json:"size"`
	RentType        RentType        `json:"rent_type"`
	RatePerSqm      float64         `json:"rate_per_sqm"`
	MonthlyRent     float64         `json:"monthly_rent"`
	OccupancyStatus OccupancyStatus `json:"occupancy_status"`
	Tenant          string          `json:"tenant,omitempty"`
	PropertyID      uint            `json:"property_id" gorm:"not null;index:idx_unit_name_property"`
	FloorID         *uint           `json:"floor_id,omitempty" gorm:"index"`
}

func (Unit) TableName() string {
	return "units"
}
