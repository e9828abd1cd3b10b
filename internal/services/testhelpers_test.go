package services

import (
	"encoding/json"
	"fmt"
	"testing"

	"japa_backend/database"
	"japa_backend/internal/billing"
	"japa_backend/internal/config"
	"japa_backend/internal/email"
	"japa_backend/internal/models"
	"japa_backend/internal/services/dto"
	"japa_backend/pkg/apperrors"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Env = "development"
	cfg.App.BaseURL = "http://localhost:3000"
	cfg.App.RegistrationFeeCents = 1500
	cfg.App.Currency = "usd"
	cfg.Stripe.ProductName = "JAPA Registration Fee"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	config.AppConfig = cfg
	return cfg
}

// fakeBilling is an in-memory stand-in for the payment provider.
type fakeBilling struct {
	sessions      map[string]*billing.SessionStatus
	confirmations map[string]*billing.Confirmation
	events        map[string]*billing.WebhookEvent // keyed by signature

	customersCreated int
	nextSessionID    string
	checkoutErr      error
	parseErr         error // non-signature decode failure
}

func newFakeBilling() *fakeBilling {
	return &fakeBilling{
		sessions:      make(map[string]*billing.SessionStatus),
		confirmations: make(map[string]*billing.Confirmation),
		events:        make(map[string]*billing.WebhookEvent),
		nextSessionID: "cs_test_1",
	}
}

func (f *fakeBilling) CreateCustomer(email, name string, metadata map[string]string) (*billing.Customer, error) {
	f.customersCreated++
	return &billing.Customer{ID: "cus_test"}, nil
}

func (f *fakeBilling) CreateCheckoutSession(params billing.CheckoutParams) (*billing.CheckoutSession, error) {
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return &billing.CheckoutSession{
		ID:  f.nextSessionID,
		URL: "https://checkout.example/" + f.nextSessionID,
	}, nil
}

func (f *fakeBilling) RetrieveSession(sessionID string) (*billing.SessionStatus, error) {
	status, ok := f.sessions[sessionID]
	if !ok {
		return nil, &billing.ProviderError{StatusCode: 404, Code: "resource_missing", Message: "No such checkout session"}
	}
	return status, nil
}

func (f *fakeBilling) ConfirmationForIntent(paymentIntentID string) (*billing.Confirmation, error) {
	conf, ok := f.confirmations[paymentIntentID]
	if !ok {
		return nil, &billing.ProviderError{StatusCode: 404, Code: "resource_missing", Message: "No such payment intent"}
	}
	return conf, nil
}

func (f *fakeBilling) ParseWebhookEvent(payload []byte, signature string) (*billing.WebhookEvent, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	event, ok := f.events[signature]
	if !ok {
		return nil, billing.ErrBadSignature
	}
	return event, nil
}

func (f *fakeBilling) paidSession(sessionID, intentID string) {
	conf := &billing.Confirmation{
		PaymentIntentID:   intentID,
		ChargeID:          "ch_test",
		AmountTotal:       1500,
		Currency:          "usd",
		PaymentMethodID:   "pm_test",
		PaymentMethodType: "card",
		Card: &billing.CardDetails{
			Brand:    "visa",
			Last4:    "4242",
			ExpMonth: 12,
			ExpYear:  2030,
		},
		Billing: &billing.BillingDetails{
			Name:  "Jane A",
			Email: "a@x.com",
		},
		ReceiptURL:    "https://receipts.example/ch_test",
		ReceiptNumber: "1001-2002",
	}
	f.confirmations[intentID] = conf
	f.sessions[sessionID] = &billing.SessionStatus{
		SessionID:     sessionID,
		PaymentStatus: billing.SessionPaid,
		CustomerEmail: "a@x.com",
		AmountTotal:   1500,
		Currency:      "usd",
		Confirmation:  conf,
	}
}

// recordingEmail captures welcome emails instead of sending them.
type recordingEmail struct {
	welcomes []email.WelcomeParams
	sendErr  error
}

func (r *recordingEmail) Send(msg *email.Email) error {
	return r.sendErr
}

func (r *recordingEmail) SendWelcome(params email.WelcomeParams) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.welcomes = append(r.welcomes, params)
	return nil
}

type testEnv struct {
	db       *gorm.DB
	cfg      *config.Config
	billing  *fakeBilling
	email    *recordingEmail
	services *ServiceContainer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := newTestConfig()
	fb := newFakeBilling()
	re := &recordingEmail{}

	return &testEnv{
		db:       newTestDB(t),
		cfg:      cfg,
		billing:  fb,
		email:    re,
		services: NewServiceContainer(cfg, fb, re),
	}
}

func (e *testEnv) createUser(t *testing.T, emailAddr string) *models.User {
	t.Helper()
	user := &models.User{
		FriendlyID:   fmt.Sprintf("USR-%06d", len(emailAddr)*7919%1000000),
		Email:        emailAddr,
		PasswordHash: "x",
		FullName:     "Jane A",
		Role:         models.UserRoleUser,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createPayment(t *testing.T, sessionID string, status models.PaymentStatus) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		StripeSessionID: sessionID,
		Amount:          15,
		Currency:        "USD",
		Status:          status,
		CustomerEmail:   "a@x.com",
		CustomerName:    "Jane A",
	}
	require.NoError(t, e.db.Create(payment).Error)
	return payment
}

func (e *testEnv) applicationCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.Application{}).Count(&count).Error)
	return count
}

func checkoutReq(emailAddr, fullName string) dto.CheckoutRequest {
	return dto.CheckoutRequest{Email: emailAddr, FullName: fullName}
}

func requireAppErrorCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}

func formDataOf(t *testing.T, app *models.Application) map[string]interface{} {
	t.Helper()
	var form map[string]interface{}
	require.NoError(t, json.Unmarshal(app.FormData, &form))
	return form
}
