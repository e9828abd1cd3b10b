package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"japa_backend/internal/config"
	"japa_backend/internal/models"
	"japa_backend/internal/repositories"
	"japa_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const setupTokenTTL = 24 * time.Hour

// TokenService issues and redeems one-time password-setup tokens.
type TokenService struct {
	cfg       *config.Config
	tokenRepo repositories.TokenRepository
}

func NewTokenService(cfg *config.Config, tokenRepo repositories.TokenRepository) *TokenService {
	return &TokenService{
		cfg:       cfg,
		tokenRepo: tokenRepo,
	}
}

// IssueSetupToken creates a fresh token for the user, invalidating any
// previously issued ones.
func (s *TokenService) IssueSetupToken(db *gorm.DB, userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", apperrors.InternalError(err)
	}
	token := hex.EncodeToString(buf)

	prt := &models.PasswordResetToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(setupTokenTTL),
	}
	if err := s.tokenRepo.Replace(db, prt); err != nil {
		return "", apperrors.InternalError(err)
	}

	return token, nil
}

// SetPasswordURL builds the link embedded in the welcome email.
func (s *TokenService) SetPasswordURL(token string) string {
	return s.cfg.App.BaseURL + "/auth/set-password?token=" + token
}

// Consume redeems a token, deleting it so it cannot be reused. Returns the
// owning user.
func (s *TokenService) Consume(db *gorm.DB, token string) (*models.User, error) {
	prt, err := s.tokenRepo.FindValidByToken(db, token)
	if err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.tokenRepo.DeleteByToken(db, token); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return prt.User, nil
}
