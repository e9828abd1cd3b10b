package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"japa_backend/internal/auth"
	"japa_backend/internal/billing"
	"japa_backend/internal/email"
	"japa_backend/internal/logger"
	"japa_backend/internal/models"
	"japa_backend/internal/repositories"
	"japa_backend/internal/services/dto"
	"japa_backend/internal/utils"
	"japa_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ApplicationService owns the finalization path that turns a confirmed
// payment into a durable User + Application pair, plus the plain CRUD
// around applications.
type ApplicationService struct {
	provider     billing.Provider
	emailSender  email.Provider
	tokens       *TokenService
	userRepo     repositories.UserRepository
	paymentRepo  repositories.PaymentRepository
	appRepo      repositories.ApplicationRepository
	moduleRepo   repositories.ModuleRepository
	activityRepo repositories.AdminActivityRepository
}

func NewApplicationService(
	provider billing.Provider,
	emailSender email.Provider,
	tokens *TokenService,
	userRepo repositories.UserRepository,
	paymentRepo repositories.PaymentRepository,
	appRepo repositories.ApplicationRepository,
	moduleRepo repositories.ModuleRepository,
	activityRepo repositories.AdminActivityRepository,
) *ApplicationService {
	return &ApplicationService{
		provider:     provider,
		emailSender:  emailSender,
		tokens:       tokens,
		userRepo:     userRepo,
		paymentRepo:  paymentRepo,
		appRepo:      appRepo,
		moduleRepo:   moduleRepo,
		activityRepo: activityRepo,
	}
}

// CompleteApplication finalizes a paid registration. It is safe against
// duplicate client calls: the unique index on the application's source
// session id guarantees at most one application per checkout session, and
// user creation resolves email conflicts by re-fetching the winner's row.
func (s *ApplicationService) CompleteApplication(db *gorm.DB, req dto.CompleteApplicationRequest) (*dto.CompleteApplicationResponse, error) {
	user, created, err := s.resolveUser(db, req)
	if err != nil {
		return nil, err
	}

	s.ensureBillingCustomer(db, user)

	payment, err := s.paymentRepo.FindBySessionID(db, req.SessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	// Finalization must not run ahead of confirmed payment.
	if payment.Status != models.PaymentStatusSucceeded {
		return nil, apperrors.ErrPaymentNotCompleted
	}

	// Backfill owner fields for payments created before the user existed.
	if payment.UserID == nil || payment.CustomerID == nil {
		payment.UserID = &user.ID
		payment.UserFriendlyID = &user.FriendlyID
		if payment.CustomerID == nil && user.StripeCustomerID != nil {
			payment.CustomerID = user.StripeCustomerID
		}
		if err := s.paymentRepo.Save(db, payment); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	// A prior finalization for this session short-circuits to the same id.
	if existing, err := s.appRepo.FindBySourceSessionID(db, req.SessionID); err == nil {
		return &dto.CompleteApplicationResponse{
			Success:       true,
			ApplicationID: existing.ApplicationID,
			Message:       "Application already processed for this payment",
		}, nil
	} else if !errors.Is(err, repositories.ErrApplicationNotFound) {
		return nil, apperrors.InternalError(err)
	}

	app, err := s.createApplication(db, user, payment, req)
	if err != nil {
		return nil, err
	}

	s.sendWelcome(db, user, app, created)

	logger.Info("application finalized",
		"application_id", app.ApplicationID,
		"payment_id", payment.ID,
		"user_id", user.ID,
	)

	return &dto.CompleteApplicationResponse{
		Success:       true,
		ApplicationID: app.ApplicationID,
		Message:       "Application submitted successfully",
	}, nil
}

// resolveUser is the insert-or-get step of finalization. Two concurrent
// calls for the same new email both end up with the single row the winner
// inserted.
func (s *ApplicationService) resolveUser(db *gorm.DB, req dto.CompleteApplicationRequest) (*models.User, bool, error) {
	friendlyID, err := utils.GenerateFriendlyID("USR")
	if err != nil {
		return nil, false, apperrors.InternalError(err)
	}

	// The password is random until the applicant sets one through the
	// one-time token from the welcome email.
	tempPassword, err := auth.RandomPassword()
	if err != nil {
		return nil, false, apperrors.InternalError(err)
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return nil, false, apperrors.InternalError(err)
	}

	candidate := &models.User{
		FriendlyID:   friendlyID,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Phone:        req.Phone,
		NationalID:   req.NationalID,
		Education:    req.Education,
		Description:  req.Description,
		Role:         models.UserRoleUser,
	}

	user, created, err := s.userRepo.GetOrCreateByEmail(db, candidate)
	if err != nil {
		return nil, false, apperrors.InternalError(err)
	}
	return user, created, nil
}

// ensureBillingCustomer creates the provider-side customer if the user has
// none. Failures are logged and ignored; a missing customer id does not
// block finalization.
func (s *ApplicationService) ensureBillingCustomer(db *gorm.DB, user *models.User) {
	if user.StripeCustomerID != nil {
		return
	}

	customer, err := s.provider.CreateCustomer(user.Email, user.FullName, map[string]string{
		"userId": user.ID,
	})
	if err != nil {
		logger.WithError(err).Warn("failed to create billing customer", "user_id", user.ID)
		return
	}

	if err := s.userRepo.UpdateStripeCustomerID(db, user.ID, customer.ID); err != nil {
		logger.WithError(err).Warn("failed to persist billing customer id", "user_id", user.ID)
		return
	}
	user.StripeCustomerID = &customer.ID
}

func (s *ApplicationService) createApplication(db *gorm.DB, user *models.User, payment *models.Payment, req dto.CompleteApplicationRequest) (*models.Application, error) {
	formData := make(map[string]interface{}, len(req.ModuleFields)+6)
	for k, v := range req.ModuleFields {
		formData[k] = v
	}
	// Payment audit trail embedded alongside the form answers.
	formData["stripeSessionId"] = req.SessionID
	formData["paymentId"] = payment.ID
	formData["paymentMethod"] = payment.PaymentMethodType
	formData["last4"] = payment.CardLast4
	formData["amount"] = payment.Amount
	formData["currency"] = payment.Currency

	formJSON, err := json.Marshal(formData)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	sessionID := req.SessionID
	for attempt := 0; attempt < 2; attempt++ {
		applicationID, err := utils.GenerateFriendlyID("APP")
		if err != nil {
			return nil, apperrors.InternalError(err)
		}

		app := &models.Application{
			ApplicationID:   applicationID,
			UserID:          user.ID,
			ModuleID:        req.ModuleID,
			SourceSessionID: &sessionID,
			FormData:        formJSON,
			Status:          models.ApplicationStatusUnderReview,
		}

		err = s.appRepo.Create(db, app)
		if err == nil {
			return app, nil
		}
		if !errors.Is(err, repositories.ErrApplicationExists) {
			return nil, apperrors.InternalError(err)
		}

		// A concurrent finalization won the session-id index; return its
		// row. If the conflict was on the friendly id instead, retry with
		// a fresh one.
		if existing, ferr := s.appRepo.FindBySourceSessionID(db, sessionID); ferr == nil {
			return existing, nil
		}
	}

	return nil, apperrors.InternalError(errors.New("could not allocate application id"))
}

// sendWelcome issues the one-time setup token and dispatches the welcome
// email. Failures are logged, never surfaced: finalization has already
// succeeded from the applicant's point of view.
func (s *ApplicationService) sendWelcome(db *gorm.DB, user *models.User, app *models.Application, newAccount bool) {
	token, err := s.tokens.IssueSetupToken(db, user.ID)
	if err != nil {
		logger.WithError(err).Error("failed to issue setup token", "user_id", user.ID)
		return
	}

	err = s.emailSender.SendWelcome(email.WelcomeParams{
		To:             user.Email,
		FullName:       user.FullName,
		ApplicationID:  app.ApplicationID,
		SetPasswordURL: s.tokens.SetPasswordURL(token),
	})
	if err != nil {
		logger.WithError(err).Error("failed to send welcome email",
			"user_id", user.ID,
			"new_account", newAccount,
		)
	}
}

// SubmitApplication is the direct path for signed-in users.
func (s *ApplicationService) SubmitApplication(db *gorm.DB, userID string, req dto.SubmitApplicationRequest) (*dto.ApplicationResponse, error) {
	if _, err := s.moduleRepo.FindByID(db, req.ModuleID); err != nil {
		if errors.Is(err, repositories.ErrModuleNotFound) {
			return nil, apperrors.ErrModuleNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	formJSON, err := json.Marshal(req.FormData)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	applicationID, err := utils.GenerateFriendlyID("APP")
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	app := &models.Application{
		ApplicationID: applicationID,
		UserID:        userID,
		ModuleID:      req.ModuleID,
		FormData:      formJSON,
		Status:        models.ApplicationStatusUnderReview,
	}
	if req.CVURL != "" {
		app.CVURL = &req.CVURL
	}

	if err := s.appRepo.Create(db, app); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return applicationToDTO(app), nil
}

// GetApplication returns one application, restricted to its owner unless
// the caller is an admin.
func (s *ApplicationService) GetApplication(db *gorm.DB, id, callerID string, callerRole models.UserRole) (*dto.ApplicationResponse, error) {
	app, err := s.appRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if callerRole != models.UserRoleAdmin && app.UserID != callerID {
		return nil, apperrors.ErrForbidden
	}

	return applicationToDTO(app), nil
}

// ListApplications returns the caller's applications, or a filtered listing
// across all users for admins.
func (s *ApplicationService) ListApplications(db *gorm.DB, callerID string, callerRole models.UserRole, query dto.ApplicationListQuery) (*dto.ApplicationListResponse, error) {
	filter := repositories.ApplicationFilter{
		Status:   models.ApplicationStatus(query.Status),
		ModuleID: query.ModuleID,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if callerRole != models.UserRoleAdmin {
		filter.UserID = callerID
	}

	apps, total, err := s.appRepo.FindWithFilter(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, *applicationToDTO(&apps[i]))
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return &dto.ApplicationListResponse{
		Applications: out,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}

// ReviewApplication is the admin status change, recorded in the activity log.
// Only applications still UNDER_REVIEW can receive a verdict.
func (s *ApplicationService) ReviewApplication(db *gorm.DB, id, adminID string, req dto.ReviewApplicationRequest) error {
	app, err := s.appRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return apperrors.ErrApplicationNotFound
		}
		return apperrors.InternalError(err)
	}
	if app.Status != models.ApplicationStatusUnderReview {
		return apperrors.New(
			apperrors.CodeInvalidTransition,
			fmt.Sprintf("application is already %s", app.Status),
			http.StatusBadRequest,
		)
	}

	status := models.ApplicationStatus(req.Status)
	err = s.appRepo.UpdateStatus(db, id, status, adminID, req.Notes)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return apperrors.ErrApplicationNotFound
		}
		return apperrors.InternalError(err)
	}

	activity := &models.AdminActivity{
		AdminID:    adminID,
		Action:     "application_status_change",
		TargetType: "application",
		TargetID:   id,
		Details: mustJSON(map[string]interface{}{
			"status": req.Status,
			"notes":  req.Notes,
		}),
	}
	if err := s.activityRepo.Record(db, activity); err != nil {
		logger.WithError(err).Warn("failed to record admin activity", "admin_id", adminID)
	}

	return nil
}

func applicationToDTO(app *models.Application) *dto.ApplicationResponse {
	resp := &dto.ApplicationResponse{
		ID:            app.ID,
		ApplicationID: app.ApplicationID,
		UserID:        app.UserID,
		ModuleID:      app.ModuleID,
		Status:        string(app.Status),
		ReviewNotes:   app.ReviewNotes,
		CreatedAt:     app.CreatedAt.Format(time.RFC3339),
	}
	if app.CVURL != nil {
		resp.CVURL = *app.CVURL
	}
	if app.Module != nil {
		resp.ModuleTitle = app.Module.Title
	}
	if len(app.FormData) > 0 {
		var form map[string]interface{}
		if err := json.Unmarshal(app.FormData, &form); err == nil {
			resp.FormData = form
		}
	}
	return resp
}
