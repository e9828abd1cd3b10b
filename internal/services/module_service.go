package services

import (
	"encoding/json"
	"errors"

	"japa_backend/internal/models"
	"japa_backend/internal/repositories"
	"japa_backend/internal/services/dto"
	"japa_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ModuleService struct {
	moduleRepo repositories.ModuleRepository
}

func NewModuleService(moduleRepo repositories.ModuleRepository) *ModuleService {
	return &ModuleService{moduleRepo: moduleRepo}
}

func (s *ModuleService) ListModules(db *gorm.DB) ([]dto.ModuleResponse, error) {
	modules, err := s.moduleRepo.ListActive(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.ModuleResponse, 0, len(modules))
	for i := range modules {
		out = append(out, *moduleToDTO(&modules[i]))
	}
	return out, nil
}

// CreateModule adds a catalog entry. Modules are created active.
func (s *ModuleService) CreateModule(db *gorm.DB, req dto.CreateModuleRequest) (*dto.ModuleResponse, error) {
	module := &models.Module{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		IsActive:    true,
	}
	if len(req.Fields) > 0 {
		fields, err := json.Marshal(req.Fields)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		module.Fields = fields
	}

	if err := s.moduleRepo.Create(db, module); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return moduleToDTO(module), nil
}

func (s *ModuleService) GetModule(db *gorm.DB, id int) (*dto.ModuleResponse, error) {
	module, err := s.moduleRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrModuleNotFound) {
			return nil, apperrors.ErrModuleNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return moduleToDTO(module), nil
}

func moduleToDTO(module *models.Module) *dto.ModuleResponse {
	resp := &dto.ModuleResponse{
		ID:          module.ID,
		Title:       module.Title,
		Description: module.Description,
		Category:    module.Category,
	}
	if len(module.Fields) > 0 {
		var fields map[string]interface{}
		if err := json.Unmarshal(module.Fields, &fields); err == nil {
			resp.Fields = fields
		}
	}
	return resp
}
