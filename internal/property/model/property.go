package model

// Property is a managed building or estate. Floors and units reference it by
// id; ownership rules (no delete while children exist) are enforced in the
// service layer.
type Property struct {
	Base
	Name           string       `json:"name" gorm:"not null;index"`
	PropertyType   PropertyType `json:"property_type" gorm:"not null"`
	Address        string       `json:"address" gorm:"not null"`
	NumberOfFloors int          `json:"number_of_floors"`
	NumberOfUnits  int          `json:"number_of_units"`
	// ManagedBy references a user in the user service. It is a weak
	// reference: the user is resolved at read time, never stored here.
	ManagedBy *uint `json:"managed_by,omitempty"`
}

func (Property) TableName() string {
	return "properties"
}
