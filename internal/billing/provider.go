package billing

import "fmt"

// Provider is the payment-provider port. Services and tests depend on this
// interface; the Stripe implementation lives in stripe_provider.go.
type Provider interface {
	// CreateCustomer registers a billing customer and returns its id.
	CreateCustomer(email, name string, metadata map[string]string) (*Customer, error)

	// CreateCheckoutSession opens a hosted checkout page.
	CreateCheckoutSession(params CheckoutParams) (*CheckoutSession, error)

	// RetrieveSession fetches a session expanded with its payment intent
	// and customer. When the session is paid, Confirmation carries the
	// charge and payment-method details.
	RetrieveSession(sessionID string) (*SessionStatus, error)

	// ConfirmationForIntent loads charge and payment-method details for a
	// payment intent. Used by the webhook path, which only has intent ids.
	ConfirmationForIntent(paymentIntentID string) (*Confirmation, error)

	// ParseWebhookEvent verifies the webhook signature and decodes the
	// event envelope. A signature mismatch returns ErrBadSignature.
	ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
}

// Payment statuses reported on a checkout session.
const (
	SessionPaid   = "paid"
	SessionUnpaid = "unpaid"
)

// Webhook event types the receiver dispatches on.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventPaymentIntentSucceeded   = "payment_intent.succeeded"
	EventPaymentIntentFailed      = "payment_intent.payment_failed"
	EventChargeRefunded           = "charge.refunded"
)

type Customer struct {
	ID string
}

type CheckoutParams struct {
	CustomerID         string // preferred when the user already has one
	CustomerEmail      string
	AmountCents        int64
	Currency           string
	ProductName        string
	ProductDescription string
	ProductImage       string
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
}

type CardDetails struct {
	Brand    string
	Last4    string
	ExpMonth int64
	ExpYear  int64
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type BillingDetails struct {
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
}

// Confirmation is everything the service layer persists about a confirmed
// payment.
type Confirmation struct {
	PaymentIntentID   string
	ChargeID          string
	AmountTotal       int64
	Currency          string
	CustomerEmail     string
	PaymentMethodID   string
	PaymentMethodType string
	Card              *CardDetails
	Billing           *BillingDetails
	ReceiptURL        string
	ReceiptNumber     string
}

type SessionStatus struct {
	SessionID     string
	PaymentStatus string // SessionPaid, SessionUnpaid or a provider-specific value
	CustomerEmail string
	AmountTotal   int64
	Currency      string
	Confirmation  *Confirmation // non-nil when PaymentStatus == SessionPaid
}

// WebhookEvent is the decoded provider event, reduced to the fields the
// receiver dispatches on.
type WebhookEvent struct {
	ID   string
	Type string

	SessionID       string // checkout.session.completed
	PaymentIntentID string // intent and charge events

	// payment_intent.payment_failed
	FailureCode    string
	FailureMessage string
	FailureType    string

	// charge.refunded
	ChargeID       string
	AmountRefunded int64
}

// ErrBadSignature reports a webhook signature verification failure.
var ErrBadSignature = fmt.Errorf("webhook signature verification failed")

// ProviderError preserves the upstream status code and message so handlers
// can pass the provider's failure class through to the client.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
