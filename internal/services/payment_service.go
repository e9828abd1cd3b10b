package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"japa_backend/internal/billing"
	"japa_backend/internal/config"
	"japa_backend/internal/logger"
	"japa_backend/internal/models"
	"japa_backend/internal/repositories"
	"japa_backend/internal/services/dto"
	"japa_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentService owns the checkout, verification and webhook paths. All
// three write the Payment row exclusively through the status state machine,
// so races between the synchronous verifier and the webhook stay benign.
type PaymentService struct {
	cfg         *config.Config
	provider    billing.Provider
	paymentRepo repositories.PaymentRepository
	userRepo    repositories.UserRepository
}

func NewPaymentService(
	cfg *config.Config,
	provider billing.Provider,
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
) *PaymentService {
	return &PaymentService{
		cfg:         cfg,
		provider:    provider,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
	}
}

// CreateCheckoutSession opens a hosted checkout for the registration fee and
// persists a PENDING Payment keyed by the session id before returning, so
// the session is recoverable even if the client never redirects back.
func (s *PaymentService) CreateCheckoutSession(db *gorm.DB, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	// The user may not exist yet; account creation is deferred to
	// finalization in the payment-first flow.
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	var customerID string
	if user != nil {
		paid, err := s.paymentRepo.HasSucceededForUser(db, user.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if paid {
			return nil, apperrors.ErrAlreadyPaid
		}

		if user.StripeCustomerID != nil {
			customerID = *user.StripeCustomerID
		} else {
			customer, err := s.provider.CreateCustomer(user.Email, user.FullName, map[string]string{
				"userId": user.ID,
			})
			if err != nil {
				return nil, mapProviderError(err)
			}
			customerID = customer.ID
			if err := s.userRepo.UpdateStripeCustomerID(db, user.ID, customerID); err != nil {
				return nil, apperrors.InternalError(err)
			}
		}
	}

	session, err := s.provider.CreateCheckoutSession(billing.CheckoutParams{
		CustomerID:         customerID,
		CustomerEmail:      req.Email,
		AmountCents:        s.cfg.App.RegistrationFeeCents,
		Currency:           s.cfg.App.Currency,
		ProductName:        s.cfg.Stripe.ProductName,
		ProductDescription: "Secure your spot in the JAPA program - Non-refundable eligibility test fee",
		ProductImage:       s.cfg.Stripe.ProductImage,
		SuccessURL:         s.cfg.App.BaseURL + "/auth/register/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:          s.cfg.App.BaseURL + "/auth/register/payment/cancel",
		Metadata: map[string]string{
			"email":    req.Email,
			"fullName": req.FullName,
		},
	})
	if err != nil {
		return nil, mapProviderError(err)
	}

	payment := &models.Payment{
		StripeSessionID: session.ID,
		Amount:          float64(s.cfg.App.RegistrationFeeCents) / 100,
		Currency:        strings.ToUpper(s.cfg.App.Currency),
		Status:          models.PaymentStatusPending,
		Description:     s.cfg.Stripe.ProductName,
		CustomerEmail:   req.Email,
		CustomerName:    req.FullName,
		ReceiptEmail:    req.Email,
	}
	if session.PaymentIntentID != "" {
		payment.PaymentIntentID = &session.PaymentIntentID
	}
	if customerID != "" {
		payment.CustomerID = &customerID
	}
	if user != nil {
		payment.UserID = &user.ID
		payment.UserFriendlyID = &user.FriendlyID
	}
	payment.Metadata = mustJSON(map[string]interface{}{
		"sessionId":   session.ID,
		"productName": s.cfg.Stripe.ProductName,
		"mode":        "payment",
	})

	if err := s.paymentRepo.Create(db, payment); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("checkout session created",
		"session_id", session.ID,
		"payment_id", payment.ID,
		"email", req.Email,
	)

	return &dto.CheckoutResponse{
		SessionID: session.ID,
		PaymentID: payment.ID,
		URL:       session.URL,
	}, nil
}

// VerifySession is the synchronous confirmation path, invoked by the client
// after the checkout redirect. Calling it again for an already SUCCEEDED
// payment changes nothing.
func (s *PaymentService) VerifySession(db *gorm.DB, sessionID string) (*dto.VerifySessionResponse, error) {
	status, err := s.provider.RetrieveSession(sessionID)
	if err != nil {
		return nil, mapProviderError(err)
	}

	switch status.PaymentStatus {
	case billing.SessionPaid:
		// fall through below
	case billing.SessionUnpaid:
		return nil, apperrors.ErrPaymentPending
	default:
		return nil, apperrors.ErrUnknownPaymentStatus
	}

	payment, err := s.paymentRepo.FindBySessionID(db, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if payment.Status != models.PaymentStatusSucceeded {
		if err := s.markSucceeded(db, payment, status.Confirmation, status.CustomerEmail); err != nil {
			return nil, err
		}
	}

	resp := &dto.VerifySessionResponse{
		Success:       true,
		PaymentStatus: billing.SessionPaid,
		Amount:        status.AmountTotal,
		Currency:      status.Currency,
		CustomerEmail: status.CustomerEmail,
	}
	if status.Confirmation != nil {
		resp.PaymentMethod = status.Confirmation.PaymentMethodType
		resp.ReceiptURL = status.Confirmation.ReceiptURL
	}
	return resp, nil
}

// ProcessWebhookEvent verifies the signature, dispatches the event and
// always reports success once the signature checks out. Processing failures
// are logged instead of surfaced, so the provider does not redeliver.
func (s *PaymentService) ProcessWebhookEvent(db *gorm.DB, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhookEvent(payload, signature)
	if err != nil {
		if errors.Is(err, billing.ErrBadSignature) {
			return apperrors.ErrInvalidSignature
		}
		// The signature checked out but the event would not decode.
		// Rejecting would make the provider redeliver an event that will
		// never decode; log it and acknowledge.
		logger.WithError(err).Error("failed to decode webhook event")
		return nil
	}

	if err := s.handleEvent(db, event); err != nil {
		logger.WebhookLog(event.Type, event.ID, err)
	}
	return nil
}

func (s *PaymentService) handleEvent(db *gorm.DB, event *billing.WebhookEvent) error {
	switch event.Type {
	case billing.EventCheckoutSessionCompleted:
		return s.handleSessionCompleted(db, event)
	case billing.EventPaymentIntentSucceeded:
		return s.handleIntentSucceeded(db, event)
	case billing.EventPaymentIntentFailed:
		return s.handleIntentFailed(db, event)
	case billing.EventChargeRefunded:
		return s.handleChargeRefunded(db, event)
	default:
		logger.Info("ignoring webhook event", "type", event.Type, "event_id", event.ID)
		return nil
	}
}

func (s *PaymentService) handleSessionCompleted(db *gorm.DB, event *billing.WebhookEvent) error {
	payment, err := s.paymentRepo.FindBySessionID(db, event.SessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			// The webhook can outrun the checkout path's insert. The
			// synchronous verifier is the primary confirmation path,
			// so a miss here is a logged no-op.
			logger.Warn("webhook for unknown session", "session_id", event.SessionID)
			return nil
		}
		return err
	}

	if payment.Status == models.PaymentStatusSucceeded {
		return nil
	}

	var conf *billing.Confirmation
	if event.PaymentIntentID != "" {
		conf, err = s.provider.ConfirmationForIntent(event.PaymentIntentID)
		if err != nil {
			return err
		}
	}
	return s.markSucceeded(db, payment, conf, "")
}

func (s *PaymentService) handleIntentSucceeded(db *gorm.DB, event *billing.WebhookEvent) error {
	payment, err := s.findByIntent(db, event.PaymentIntentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			logger.Warn("webhook for unknown payment intent", "payment_intent_id", event.PaymentIntentID)
			return nil
		}
		return err
	}

	if payment.Status == models.PaymentStatusSucceeded {
		return nil
	}

	conf, err := s.provider.ConfirmationForIntent(event.PaymentIntentID)
	if err != nil {
		return err
	}
	return s.markSucceeded(db, payment, conf, "")
}

func (s *PaymentService) handleIntentFailed(db *gorm.DB, event *billing.WebhookEvent) error {
	payment, err := s.findByIntent(db, event.PaymentIntentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			logger.Warn("failure webhook for unknown payment intent", "payment_intent_id", event.PaymentIntentID)
			return nil
		}
		return err
	}

	if payment.Status == models.PaymentStatusFailed {
		return nil
	}
	if err := payment.TransitionTo(models.PaymentStatusFailed); err != nil {
		return fmt.Errorf("payment %s: %w", payment.ID, err)
	}

	now := time.Now()
	payment.FailedAt = &now
	payment.FailureCode = event.FailureCode
	payment.FailureMessage = event.FailureMessage
	payment.FailureType = event.FailureType
	if payment.TransactionID == nil && event.PaymentIntentID != "" {
		payment.TransactionID = &event.PaymentIntentID
	}

	return s.paymentRepo.Save(db, payment)
}

func (s *PaymentService) handleChargeRefunded(db *gorm.DB, event *billing.WebhookEvent) error {
	payment, err := s.findByIntent(db, event.PaymentIntentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			logger.Warn("refund webhook for unknown payment intent", "payment_intent_id", event.PaymentIntentID)
			return nil
		}
		return err
	}

	if payment.Status == models.PaymentStatusCanceled {
		return nil
	}
	if err := payment.TransitionTo(models.PaymentStatusCanceled); err != nil {
		return fmt.Errorf("payment %s: %w", payment.ID, err)
	}

	now := time.Now()
	payment.RefundedAt = &now
	payment.RefundAmount = &event.AmountRefunded
	payment.RefundStatus = "refunded"

	return s.paymentRepo.Save(db, payment)
}

// findByIntent resolves a payment from an intent id, trying the confirmed
// transaction id first and falling back to the intent recorded at checkout.
func (s *PaymentService) findByIntent(db *gorm.DB, paymentIntentID string) (*models.Payment, error) {
	if paymentIntentID == "" {
		return nil, repositories.ErrPaymentNotFound
	}
	payment, err := s.paymentRepo.FindByTransactionID(db, paymentIntentID)
	if err == nil {
		return payment, nil
	}
	if !errors.Is(err, repositories.ErrPaymentNotFound) {
		return nil, err
	}
	return s.paymentRepo.FindByPaymentIntentID(db, paymentIntentID)
}

// markSucceeded moves the payment to SUCCEEDED and records the confirmation
// details. Both the verifier and the webhook path end up here, so a race
// between them writes the same terminal values.
func (s *PaymentService) markSucceeded(db *gorm.DB, payment *models.Payment, conf *billing.Confirmation, customerEmail string) error {
	if err := payment.TransitionTo(models.PaymentStatusSucceeded); err != nil {
		return apperrors.New(
			apperrors.CodeInvalidTransition,
			fmt.Sprintf("payment is already %s", payment.Status),
			http.StatusBadRequest,
		)
	}

	now := time.Now()
	payment.SucceededAt = &now
	if customerEmail != "" {
		payment.CustomerEmail = customerEmail
	}

	if conf != nil {
		payment.TransactionID = &conf.PaymentIntentID
		payment.PaymentIntentID = &conf.PaymentIntentID
		payment.PaymentMethodID = conf.PaymentMethodID
		payment.PaymentMethodType = conf.PaymentMethodType
		payment.ReceiptURL = conf.ReceiptURL
		payment.ReceiptNumber = conf.ReceiptNumber
		if conf.Card != nil {
			payment.CardBrand = conf.Card.Brand
			payment.CardLast4 = conf.Card.Last4
		}
		if conf.Billing != nil {
			payment.BillingDetails = mustJSON(conf.Billing)
		}

		meta := map[string]interface{}{
			"sessionId":       payment.StripeSessionID,
			"paymentIntentId": conf.PaymentIntentID,
			"chargeId":        conf.ChargeID,
			"receiptNumber":   conf.ReceiptNumber,
		}
		if conf.Card != nil {
			meta["last4"] = conf.Card.Last4
			meta["brand"] = conf.Card.Brand
			meta["expMonth"] = conf.Card.ExpMonth
			meta["expYear"] = conf.Card.ExpYear
		}
		payment.Metadata = mustJSON(meta)
	}

	if err := s.paymentRepo.Save(db, payment); err != nil {
		return apperrors.InternalError(err)
	}

	logger.Info("payment succeeded",
		"payment_id", payment.ID,
		"session_id", payment.StripeSessionID,
	)
	return nil
}

// ListUserPayments returns the user's payment history.
func (s *PaymentService) ListUserPayments(db *gorm.DB, userID string) ([]dto.PaymentResponse, error) {
	payments, err := s.paymentRepo.ListByUserID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp := dto.PaymentResponse{
			ID:           p.ID,
			SessionID:    p.StripeSessionID,
			Status:       string(p.Status),
			Amount:       p.Amount,
			Currency:     p.Currency,
			CardBrand:    p.CardBrand,
			CardLast4:    p.CardLast4,
			ReceiptURL:   p.ReceiptURL,
			CreatedAt:    p.CreatedAt.Format(time.RFC3339),
			RefundAmount: p.RefundAmount,
		}
		if p.SucceededAt != nil {
			t := p.SucceededAt.Format(time.RFC3339)
			resp.SucceededAt = &t
		}
		out = append(out, resp)
	}
	return out, nil
}

// mapProviderError converts billing failures into user-visible errors that
// carry the provider's status code.
func mapProviderError(err error) error {
	var pe *billing.ProviderError
	if errors.As(err, &pe) {
		status := pe.StatusCode
		if status == 0 {
			status = 502
		}
		return apperrors.ExternalServiceError(err, pe.Message, status)
	}
	return apperrors.ExternalServiceError(err, "payment provider request failed", 502)
}

func mustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}
