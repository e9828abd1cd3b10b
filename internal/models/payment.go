package models

import (
	"time"

	"gorm.io/datatypes"
)

// Payment is one row per checkout attempt. A row is created in PENDING state
// when the checkout session is opened and moves through the status state
// machine exactly once; after reaching a terminal state only the refund
// fields may still change.
type Payment struct {
	BaseModel
	StripeSessionID string  `gorm:"uniqueIndex;not null"`
	TransactionID   *string `gorm:"uniqueIndex"` // payment intent id, nil until confirmed
	PaymentIntentID *string

	UserID         *string `gorm:"index"`
	UserFriendlyID *string
	CustomerID     *string // external billing-customer reference

	Amount      float64       `gorm:"not null"`
	Currency    string        `gorm:"type:varchar(10);not null"`
	Status      PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Description string

	CustomerEmail string
	CustomerName  string
	ReceiptEmail  string

	PaymentMethodID   string
	PaymentMethodType string
	CardBrand         string
	CardLast4         string
	ReceiptURL        string
	ReceiptNumber     string

	BillingDetails datatypes.JSON
	Metadata       datatypes.JSON

	FailureCode    string
	FailureMessage string
	FailureType    string

	RefundAmount *int64
	RefundStatus string

	SucceededAt *time.Time
	FailedAt    *time.Time
	RefundedAt  *time.Time

	User *User `gorm:"foreignKey:UserID"`
}

// TransitionTo applies the status state machine. All writers (verifier,
// webhook processor, finalizer) go through this single guard.
func (p *Payment) TransitionTo(next PaymentStatus) error {
	if !p.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	p.Status = next
	return nil
}
