package repositories

import (
	"errors"

	"japa_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEnglishTestNotFound = errors.New("english test not found")

type EnglishTestRepository interface {
	Upsert(db *gorm.DB, test *models.EnglishTest) error
	FindByUserID(db *gorm.DB, userID string) (*models.EnglishTest, error)
}

type EnglishTestRepositoryImpl struct{}

func NewEnglishTestRepository() EnglishTestRepository {
	return &EnglishTestRepositoryImpl{}
}

// Upsert saves the user's test result, replacing any earlier submission.
func (r *EnglishTestRepositoryImpl) Upsert(db *gorm.DB, test *models.EnglishTest) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"test_data", "updated_at"}),
	}).Create(test).Error
}

func (r *EnglishTestRepositoryImpl) FindByUserID(db *gorm.DB, userID string) (*models.EnglishTest, error) {
	var test models.EnglishTest
	err := db.First(&test, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnglishTestNotFound
		}
		return nil, err
	}
	return &test, nil
}
