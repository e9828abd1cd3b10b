package dto

// CheckoutRequest starts a hosted checkout for the registration fee.
type CheckoutRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	PaymentID string `json:"paymentId"`
	URL       string `json:"url"`
}

type VerifySessionRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type VerifySessionResponse struct {
	Success       bool   `json:"success"`
	PaymentStatus string `json:"paymentStatus"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	ReceiptURL    string `json:"receiptUrl,omitempty"`
}

// CompleteApplicationRequest carries the session id plus the form data the
// client cached across the checkout redirect. The provider does not echo
// form payloads back, so the client re-submits them here.
type CompleteApplicationRequest struct {
	SessionID    string                 `json:"sessionId" validate:"required"`
	Email        string                 `json:"email" validate:"required,email"`
	FullName     string                 `json:"fullName"`
	ModuleID     int                    `json:"moduleId" validate:"required"`
	ModuleFields map[string]interface{} `json:"moduleFields"`
	Phone        string                 `json:"phone"`
	NationalID   string                 `json:"nationalId"`
	Education    string                 `json:"education"`
	Description  string                 `json:"description"`
}

type CompleteApplicationResponse struct {
	Success       bool   `json:"success"`
	ApplicationID string `json:"applicationId"`
	Message       string `json:"message,omitempty"`
}

type PaymentResponse struct {
	ID            string   `json:"id"`
	SessionID     string   `json:"sessionId"`
	Status        string   `json:"status"`
	Amount        float64  `json:"amount"`
	Currency      string   `json:"currency"`
	CardBrand     string   `json:"cardBrand,omitempty"`
	CardLast4     string   `json:"cardLast4,omitempty"`
	ReceiptURL    string   `json:"receiptUrl,omitempty"`
	CreatedAt     string   `json:"createdAt"`
	SucceededAt   *string  `json:"succeededAt,omitempty"`
	RefundAmount  *int64   `json:"refundAmount,omitempty"`
}
