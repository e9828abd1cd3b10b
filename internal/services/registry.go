package services

import (
	"japa_backend/internal/billing"
	"japa_backend/internal/config"
	"japa_backend/internal/email"
	"japa_backend/internal/repositories"
)

// ServiceContainer wires repositories and external providers into the
// service layer once at startup. Handlers resolve services from here.
type ServiceContainer struct {
	Auth        *AuthService
	Payment     *PaymentService
	Application *ApplicationService
	User        *UserService
	Module      *ModuleService
	EnglishTest *EnglishTestService
	Token       *TokenService
}

func NewServiceContainer(cfg *config.Config, provider billing.Provider, emailSender email.Provider) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	paymentRepo := repositories.NewPaymentRepository()
	appRepo := repositories.NewApplicationRepository()
	tokenRepo := repositories.NewTokenRepository()
	moduleRepo := repositories.NewModuleRepository()
	testRepo := repositories.NewEnglishTestRepository()
	activityRepo := repositories.NewAdminActivityRepository()

	tokens := NewTokenService(cfg, tokenRepo)

	return &ServiceContainer{
		Auth:        NewAuthService(userRepo, tokens),
		Payment:     NewPaymentService(cfg, provider, paymentRepo, userRepo),
		Application: NewApplicationService(provider, emailSender, tokens, userRepo, paymentRepo, appRepo, moduleRepo, activityRepo),
		User:        NewUserService(userRepo),
		Module:      NewModuleService(moduleRepo),
		EnglishTest: NewEnglishTestService(testRepo),
		Token:       tokens,
	}
}
