package services

import (
	"errors"
	"time"

	"japa_backend/internal/models"
	"japa_backend/internal/repositories"
	"japa_backend/internal/services/dto"
	"japa_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUser(db *gorm.DB, id string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return userToDTO(user), nil
}

func (s *UserService) UpdateUser(db *gorm.DB, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Education != "" {
		user.Education = req.Education
	}
	if req.Description != "" {
		user.Description = req.Description
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return userToDTO(user), nil
}

func userToDTO(user *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          user.ID,
		FriendlyID:  user.FriendlyID,
		Email:       user.Email,
		FullName:    user.FullName,
		Phone:       user.Phone,
		NationalID:  user.NationalID,
		Education:   user.Education,
		Description: user.Description,
		Role:        string(user.Role),
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}
