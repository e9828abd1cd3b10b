package services

import (
	"errors"
	"time"

	"japa_backend/internal/auth"
	"japa_backend/internal/logger"
	"japa_backend/internal/models"
	"japa_backend/internal/repositories"
	"japa_backend/internal/services/dto"
	"japa_backend/internal/utils"
	"japa_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService struct {
	userRepo repositories.UserRepository
	tokens   *TokenService
}

func NewAuthService(userRepo repositories.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Register is the direct sign-up path for users who create an account
// before applying.
func (s *AuthService) Register(db *gorm.DB, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	friendlyID, err := utils.GenerateFriendlyID("USR")
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		FriendlyID:   friendlyID,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         models.UserRoleUser,
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	return s.issueSession(db, user)
}

func (s *AuthService) Login(db *gorm.DB, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueSession(db, user)
}

// SetPassword redeems a one-time setup token and signs the user in with
// their new credential.
func (s *AuthService) SetPassword(db *gorm.DB, req dto.SetPasswordRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	user, err := s.tokens.Consume(db, req.Token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrInvalidToken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.userRepo.UpdatePassword(db, user.ID, hash); err != nil {
		return nil, apperrors.InternalError(err)
	}
	// Keep the in-memory row in sync: issueSession saves the struct, and a
	// stale hash here would overwrite the credential just written.
	user.PasswordHash = hash

	logger.Info("password set via setup token", "user_id", user.ID)

	return s.issueSession(db, user)
}

func (s *AuthService) CheckEmail(db *gorm.DB, emailAddr string) (*dto.CheckEmailResponse, error) {
	_, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return &dto.CheckEmailResponse{Exists: false}, nil
		}
		return nil, apperrors.InternalError(err)
	}
	return &dto.CheckEmailResponse{Exists: true}, nil
}

func (s *AuthService) issueSession(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Targeted column update: a full save here would write back every field
	// of the loaded struct, clobbering concurrent changes to the row.
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.UpdateLastLogin(db, user.ID, now); err != nil {
		logger.WithError(err).Warn("failed to record login time", "user_id", user.ID)
	}

	return &dto.AuthResponse{
		Token: token,
		User:  userToDTO(user),
	}, nil
}
