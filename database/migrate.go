package database

import (
	"japa_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate applies the schema for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PasswordResetToken{},
		&models.Payment{},
		&models.Module{},
		&models.Application{},
		&models.EnglishTest{},
		&models.AdminActivity{},
	)
}
