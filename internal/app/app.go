package app

import (
	"fmt"

	"japa_backend/database"
	"japa_backend/internal/billing"
	"japa_backend/internal/config"
	"japa_backend/internal/email"
	"japa_backend/internal/handlers"
	"japa_backend/internal/logger"
	"japa_backend/internal/middleware"
	"japa_backend/internal/models"
	"japa_backend/internal/repositories"
	"japa_backend/internal/routes"
	"japa_backend/internal/services"
	"japa_backend/internal/utils"
	"japa_backend/internal/validator"

	"japa_backend/internal/auth"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Run wires the whole application together and starts the HTTP server.
func Run() error {
	config.LoadConfig()
	cfg := config.GetConfig()

	logger.Init(cfg.Server.Env)

	// TranslateError turns driver-specific unique violations into
	// gorm.ErrDuplicatedKey, which the insert-or-get paths rely on.
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := seedModules(db); err != nil {
		return fmt.Errorf("failed to seed modules: %w", err)
	}
	if err := seedFirstAdmin(db, cfg); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	billingProvider := billing.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	var emailProvider email.Provider
	if cfg.Email.Enabled {
		emailProvider = email.NewSMTPProvider(cfg)
	} else {
		logger.Warn("email delivery disabled, using mock provider")
		emailProvider = NewMockEmailProvider()
	}

	sc := services.NewServiceContainer(cfg, billingProvider, emailProvider)

	router := SetupRouter(cfg, db, sc)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", "addr", addr, "env", cfg.Server.Env)

	return router.Run(addr)
}

// SetupRouter builds the gin engine with the full middleware chain and
// route table. Tests call this directly with their own db and services.
func SetupRouter(cfg *config.Config, db *gorm.DB, sc *services.ServiceContainer) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))

	h := handlers.NewAppHandlers(sc, validator.New())
	routes.RegisterRoutes(router, h)

	return router
}

// seedModules inserts the default application modules on first boot.
func seedModules(db *gorm.DB) error {
	moduleRepo := repositories.NewModuleRepository()

	count, err := moduleRepo.Count(db)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.Module{
		{Title: "Study Abroad", Description: "University and graduate programs", Category: "education", IsActive: true},
		{Title: "Work Abroad", Description: "International job placements", Category: "employment", IsActive: true},
		{Title: "Internships", Description: "Professional internship programs", Category: "employment", IsActive: true},
		{Title: "Language Programs", Description: "Immersive language study", Category: "education", IsActive: true},
		{Title: "Exchange Programs", Description: "Cultural and academic exchanges", Category: "education", IsActive: true},
	}
	for i := range defaults {
		if err := moduleRepo.Create(db, &defaults[i]); err != nil {
			return err
		}
	}

	logger.Info("seeded default modules", "count", len(defaults))
	return nil
}

// seedFirstAdmin creates the bootstrap admin account when configured and
// absent.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.FirstAdminEmail == "" || cfg.FirstAdminPassword == "" {
		return nil
	}

	userRepo := repositories.NewUserRepository()
	if _, err := userRepo.FindByEmail(db, cfg.FirstAdminEmail); err == nil {
		return nil
	}

	hash, err := auth.HashPassword(cfg.FirstAdminPassword)
	if err != nil {
		return err
	}
	friendlyID, err := utils.GenerateFriendlyID("USR")
	if err != nil {
		return err
	}

	admin := &models.User{
		FriendlyID:   friendlyID,
		Email:        cfg.FirstAdminEmail,
		PasswordHash: hash,
		FullName:     "Administrator",
		Role:         models.UserRoleAdmin,
	}
	if err := userRepo.Create(db, admin); err != nil {
		return err
	}

	logger.Info("seeded first admin", "email", cfg.FirstAdminEmail)
	return nil
}
