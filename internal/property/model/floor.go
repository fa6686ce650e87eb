package model

// Floor belongs to exactly one property. The unit counters are cached
// derivations recomputed from live units on demand; staleness between
// refreshes is tolerated.
type Floor struct {
	Base
	Name          string `json:"name" gorm:"not null;index:idx_floor_name_property"`
	PropertyID    uint   `json:"property_id" gorm:"not null;index:idx_floor_name_property"`
	NumberOfUnits int    `json:"number_of_units"`
	OccupiedUnits int    `json:"occupied_units"`
	VacantUnits   int    `json:"vacant_units"`
}

func (Floor) TableName() string {
	return "floors"
}
