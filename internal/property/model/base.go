package model

import (
	"time"

	"gorm.io/gorm"
)

// Base carries the bookkeeping columns shared by every persisted entity:
// identity, timestamps, the acting user on create/update, an optimistic
// version counter, and soft deletion.
type Base struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	CreatedBy string         `json:"created_by,omitempty"`
	UpdatedBy string         `json:"updated_by,omitempty"`
	Version   int            `json:"version"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeUpdate bumps the version counter on every update.
func (b *Base) BeforeUpdate(tx *gorm.DB) error {
	tx.Statement.SetColumn("version", b.Version+1)
	return nil
}
