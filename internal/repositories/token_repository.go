package repositories

import (
	"errors"
	"time"

	"japa_backend/internal/models"

	"gorm.io/gorm"
)

var ErrTokenNotFound = errors.New("token not found")

type TokenRepository interface {
	Replace(db *gorm.DB, token *models.PasswordResetToken) error
	FindValidByToken(db *gorm.DB, token string) (*models.PasswordResetToken, error)
	DeleteByToken(db *gorm.DB, token string) error
	DeleteExpired(db *gorm.DB) error
}

type TokenRepositoryImpl struct{}

func NewTokenRepository() TokenRepository {
	return &TokenRepositoryImpl{}
}

// Replace removes any outstanding tokens for the user before inserting the
// new one, so only the most recently issued link works.
func (r *TokenRepositoryImpl) Replace(db *gorm.DB, token *models.PasswordResetToken) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

func (r *TokenRepositoryImpl) FindValidByToken(db *gorm.DB, token string) (*models.PasswordResetToken, error) {
	var prt models.PasswordResetToken
	err := db.Preload("User").
		Where("token = ? AND expires_at > ?", token, time.Now()).
		First(&prt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &prt, nil
}

func (r *TokenRepositoryImpl) DeleteByToken(db *gorm.DB, token string) error {
	return db.Where("token = ?", token).Delete(&models.PasswordResetToken{}).Error
}

func (r *TokenRepositoryImpl) DeleteExpired(db *gorm.DB) error {
	return db.Where("expires_at < ?", time.Now()).Delete(&models.PasswordResetToken{}).Error
}
