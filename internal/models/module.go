package models

import (
	"time"

	"gorm.io/datatypes"
)

// Module is a catalog entry applicants choose from. Fields describes the
// module-specific form fields rendered by the registration flow.
type Module struct {
	ID          int    `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"not null"`
	Description string
	Category    string
	Fields      datatypes.JSON
	IsActive    bool `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}
