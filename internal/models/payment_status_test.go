package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatusTransitions(t *testing.T) {
	cases := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentStatusPending, PaymentStatusSucceeded, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusPending, PaymentStatusCanceled, false},
		{PaymentStatusSucceeded, PaymentStatusCanceled, true},
		{PaymentStatusSucceeded, PaymentStatusSucceeded, false},
		{PaymentStatusSucceeded, PaymentStatusFailed, false},
		{PaymentStatusFailed, PaymentStatusSucceeded, false},
		{PaymentStatusFailed, PaymentStatusCanceled, false},
		{PaymentStatusCanceled, PaymentStatusSucceeded, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.False(t, PaymentStatusSucceeded.IsTerminal())
	assert.True(t, PaymentStatusFailed.IsTerminal())
	assert.True(t, PaymentStatusCanceled.IsTerminal())
}

func TestPaymentTransitionTo(t *testing.T) {
	p := &Payment{Status: PaymentStatusPending}

	require.NoError(t, p.TransitionTo(PaymentStatusSucceeded))
	assert.Equal(t, PaymentStatusSucceeded, p.Status)

	err := p.TransitionTo(PaymentStatusSucceeded)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, PaymentStatusSucceeded, p.Status)

	require.NoError(t, p.TransitionTo(PaymentStatusCanceled))
	assert.Equal(t, PaymentStatusCanceled, p.Status)
}
