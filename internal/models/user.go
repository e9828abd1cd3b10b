package models

import "time"

type User struct {
	BaseModel
	FriendlyID   string   `gorm:"uniqueIndex;not null"` // USR-######
	Email        string   `gorm:"uniqueIndex;not null"`
	PasswordHash string   `gorm:"not null"`
	FullName     string   `gorm:"not null"`
	Phone        string
	NationalID   string
	Education    string
	Description  string
	Role         UserRole `gorm:"type:varchar(20);default:'USER'"`

	// External billing-customer reference, set lazily on first checkout
	// or during finalization.
	StripeCustomerID *string `gorm:"index"`

	LastLoginAt *time.Time

	// Relations
	Payments     []Payment     `gorm:"foreignKey:UserID"`
	Applications []Application `gorm:"foreignKey:UserID"`
	EnglishTest  *EnglishTest  `gorm:"foreignKey:UserID"`
}

type PasswordResetToken struct {
	BaseModel
	Token     string    `gorm:"uniqueIndex;not null"`
	UserID    string    `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null"`

	User *User `gorm:"foreignKey:UserID"`
}
