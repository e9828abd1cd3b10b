package services

import (
	"encoding/json"
	"errors"
	"time"

	"japa_backend/internal/models"
	"japa_backend/internal/repositories"
	"japa_backend/internal/services/dto"
	"japa_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type EnglishTestService struct {
	testRepo repositories.EnglishTestRepository
}

func NewEnglishTestService(testRepo repositories.EnglishTestRepository) *EnglishTestService {
	return &EnglishTestService{testRepo: testRepo}
}

// Submit stores the user's test result, replacing any earlier one.
func (s *EnglishTestService) Submit(db *gorm.DB, userID string, req dto.EnglishTestRequest) (*dto.EnglishTestResponse, error) {
	data, err := json.Marshal(req.TestData)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	test := &models.EnglishTest{
		UserID:   userID,
		TestData: data,
	}
	if err := s.testRepo.Upsert(db, test); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.EnglishTestResponse{
		UserID:    userID,
		TestData:  req.TestData,
		UpdatedAt: time.Now().Format(time.RFC3339),
	}, nil
}

func (s *EnglishTestService) Get(db *gorm.DB, userID string) (*dto.EnglishTestResponse, error) {
	test, err := s.testRepo.FindByUserID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrEnglishTestNotFound) {
			return nil, apperrors.NewNotFoundError("English test not found")
		}
		return nil, apperrors.InternalError(err)
	}

	var data map[string]interface{}
	if len(test.TestData) > 0 {
		if err := json.Unmarshal(test.TestData, &data); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	return &dto.EnglishTestResponse{
		UserID:    test.UserID,
		TestData:  data,
		UpdatedAt: test.UpdatedAt.Format(time.RFC3339),
	}, nil
}
