package handlers

import (
	"japa_backend/internal/services"
	"japa_backend/internal/validator"
)

// AppHandlers collects every HTTP handler group for route registration.
type AppHandlers struct {
	Payment     *PaymentHandler
	Auth        *AuthHandler
	Application *ApplicationHandler
	Module      *ModuleHandler
	User        *UserHandler
	EnglishTest *EnglishTestHandler
}

func NewAppHandlers(sc *services.ServiceContainer, v *validator.Validator) *AppHandlers {
	base := NewBaseHandler(v)

	return &AppHandlers{
		Payment:     NewPaymentHandler(base, sc.Payment, sc.Application),
		Auth:        NewAuthHandler(base, sc.Auth),
		Application: NewApplicationHandler(base, sc.Application),
		Module:      NewModuleHandler(base, sc.Module),
		User:        NewUserHandler(base, sc.User, sc.Payment),
		EnglishTest: NewEnglishTestHandler(base, sc.EnglishTest),
	}
}
