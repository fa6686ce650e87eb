package model

import (
	"time"

	"gorm.io/gorm"
)

// Role drives authorization across the services.
type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RolePropertyManager Role = "PROPERTY_MANAGER"
	RoleViewer          Role = "VIEWER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePropertyManager, RoleViewer:
		return true
	}
	return false
}

// User is an account in the user service. The password column holds a bcrypt
// hash and is never serialized.
type User struct {
	ID                    uint           `json:"id" gorm:"primarykey"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	CreatedBy             string         `json:"created_by,omitempty"`
	UpdatedBy             string         `json:"updated_by,omitempty"`
	Version               int            `json:"version"`
	DeletedAt             gorm.DeletedAt `json:"-" gorm:"index"`
	Username              string         `json:"username" gorm:"uniqueIndex;not null"`
	Email                 string         `json:"email" gorm:"uniqueIndex;not null"`
	Password              string         `json:"-" gorm:"not null"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	Role                  Role           `json:"role" gorm:"not null"`
	Enabled               bool           `json:"enabled" gorm:"default:true"`
	AccountNonExpired     bool           `json:"account_non_expired" gorm:"default:true"`
	AccountNonLocked      bool           `json:"account_non_locked" gorm:"default:true"`
	CredentialsNonExpired bool           `json:"credentials_non_expired" gorm:"default:true"`
}

func (User) TableName() string {
	return "users"
}

// BeforeUpdate bumps the version counter on every update.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	tx.Statement.SetColumn("version", u.Version+1)
	return nil
}
