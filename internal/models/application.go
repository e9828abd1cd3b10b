package models

import "gorm.io/datatypes"

// Application is one row per submitted application. SourceSessionID carries
// the checkout session that paid for it; the unique index is what makes
// finalization idempotent under concurrent duplicate submissions.
type Application struct {
	BaseModel
	ApplicationID   string  `gorm:"uniqueIndex;not null"` // APP-######
	UserID          string  `gorm:"not null;index"`
	ModuleID        int     `gorm:"not null"`
	SourceSessionID *string `gorm:"uniqueIndex"`

	FormData datatypes.JSON
	CVURL    *string

	Status      ApplicationStatus `gorm:"type:varchar(20);not null;default:'UNDER_REVIEW'"`
	ReviewedBy  *string
	ReviewNotes string

	User     *User   `gorm:"foreignKey:UserID"`
	Module   *Module `gorm:"foreignKey:ModuleID"`
	Reviewer *User   `gorm:"foreignKey:ReviewedBy"`
}
