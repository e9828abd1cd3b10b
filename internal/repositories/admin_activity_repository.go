package repositories

import (
	"japa_backend/internal/models"

	"gorm.io/gorm"
)

type AdminActivityRepository interface {
	Record(db *gorm.DB, activity *models.AdminActivity) error
	ListRecent(db *gorm.DB, limit int) ([]models.AdminActivity, error)
}

type AdminActivityRepositoryImpl struct{}

func NewAdminActivityRepository() AdminActivityRepository {
	return &AdminActivityRepositoryImpl{}
}

func (r *AdminActivityRepositoryImpl) Record(db *gorm.DB, activity *models.AdminActivity) error {
	return db.Create(activity).Error
}

func (r *AdminActivityRepositoryImpl) ListRecent(db *gorm.DB, limit int) ([]models.AdminActivity, error) {
	if limit <= 0 {
		limit = 50
	}
	var activities []models.AdminActivity
	err := db.Order("created_at DESC").Limit(limit).Find(&activities).Error
	return activities, err
}
