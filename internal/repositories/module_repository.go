package repositories

import (
	"errors"

	"japa_backend/internal/models"

	"gorm.io/gorm"
)

var ErrModuleNotFound = errors.New("module not found")

type ModuleRepository interface {
	FindByID(db *gorm.DB, id int) (*models.Module, error)
	ListActive(db *gorm.DB) ([]models.Module, error)
	Create(db *gorm.DB, module *models.Module) error
	Count(db *gorm.DB) (int64, error)
}

type ModuleRepositoryImpl struct{}

func NewModuleRepository() ModuleRepository {
	return &ModuleRepositoryImpl{}
}

func (r *ModuleRepositoryImpl) FindByID(db *gorm.DB, id int) (*models.Module, error) {
	var module models.Module
	err := db.First(&module, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, err
	}
	return &module, nil
}

func (r *ModuleRepositoryImpl) ListActive(db *gorm.DB) ([]models.Module, error) {
	var modules []models.Module
	err := db.Where("is_active = ?", true).Order("id").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepositoryImpl) Create(db *gorm.DB, module *models.Module) error {
	return db.Create(module).Error
}

func (r *ModuleRepositoryImpl) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.Module{}).Count(&count).Error
	return count, err
}
