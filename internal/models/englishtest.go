package models

import "gorm.io/datatypes"

// EnglishTest holds a user's writing-test submission; one row per user,
// resubmissions overwrite the payload.
type EnglishTest struct {
	BaseModel
	UserID   string `gorm:"uniqueIndex;not null"`
	TestData datatypes.JSON
}

// AdminActivity is an audit record of admin actions (application reviews,
// module edits). Consumed by the admin dashboard only.
type AdminActivity struct {
	BaseModel
	AdminID    string `gorm:"not null;index"`
	Action     string `gorm:"not null"`
	TargetType string
	TargetID   string
	Details    datatypes.JSON
}
