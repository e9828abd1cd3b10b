package repositories

import (
	"errors"

	"japa_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationExists   = errors.New("application already exists for this session")
)

type ApplicationFilter struct {
	UserID   string
	Status   models.ApplicationStatus
	ModuleID int
	Page     int
	PageSize int
}

type ApplicationRepository interface {
	Create(db *gorm.DB, app *models.Application) error
	FindByID(db *gorm.DB, id string) (*models.Application, error)
	FindByApplicationID(db *gorm.DB, applicationID string) (*models.Application, error)
	FindBySourceSessionID(db *gorm.DB, sessionID string) (*models.Application, error)
	ListByUserID(db *gorm.DB, userID string) ([]models.Application, error)
	FindWithFilter(db *gorm.DB, filter ApplicationFilter) ([]models.Application, int64, error)
	UpdateStatus(db *gorm.DB, id string, status models.ApplicationStatus, reviewedBy, notes string) error
}

type ApplicationRepositoryImpl struct{}

func NewApplicationRepository() ApplicationRepository {
	return &ApplicationRepositoryImpl{}
}

// Create inserts the application. The unique index on source_session_id
// turns a concurrent double-finalize into ErrApplicationExists so the
// caller can re-fetch the row the winner inserted.
func (r *ApplicationRepositoryImpl) Create(db *gorm.DB, app *models.Application) error {
	err := db.Create(app).Error
	if isDuplicateKey(err) {
		return ErrApplicationExists
	}
	return err
}

func (r *ApplicationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Application, error) {
	var app models.Application
	err := db.Preload("User").Preload("Module").First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindByApplicationID(db *gorm.DB, applicationID string) (*models.Application, error) {
	var app models.Application
	err := db.First(&app, "application_id = ?", applicationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindBySourceSessionID(db *gorm.DB, sessionID string) (*models.Application, error) {
	var app models.Application
	err := db.First(&app, "source_session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) ListByUserID(db *gorm.DB, userID string) ([]models.Application, error) {
	var apps []models.Application
	err := db.Preload("Module").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) FindWithFilter(db *gorm.DB, filter ApplicationFilter) ([]models.Application, int64, error) {
	query := db.Model(&models.Application{})

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ModuleID != 0 {
		query = query.Where("module_id = ?", filter.ModuleID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.PageSize
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	var apps []models.Application
	err := query.Preload("User").Preload("Module").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&apps).Error

	return apps, total, err
}

func (r *ApplicationRepositoryImpl) UpdateStatus(db *gorm.DB, id string, status models.ApplicationStatus, reviewedBy, notes string) error {
	updates := map[string]interface{}{
		"status":       status,
		"review_notes": notes,
	}
	if reviewedBy != "" {
		updates["reviewed_by"] = reviewedBy
	}

	result := db.Model(&models.Application{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}
