package models

import "errors"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCanceled  PaymentStatus = "CANCELED"
)

// ErrInvalidTransition is returned when a payment status change violates the
// state machine.
var ErrInvalidTransition = errors.New("invalid payment status transition")

// PENDING -> SUCCEEDED | FAILED; SUCCEEDED -> CANCELED (refund).
// FAILED and CANCELED are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusSucceeded, PaymentStatusFailed},
	PaymentStatusSucceeded: {PaymentStatusCanceled},
}

// CanTransitionTo reports whether the status change is permitted.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from s.
// SUCCEEDED is not terminal: a refund still moves it to CANCELED.
func (s PaymentStatus) IsTerminal() bool {
	return len(paymentTransitions[s]) == 0
}
