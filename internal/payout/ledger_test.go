package payout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLedger(t *testing.T) {
	payouts := []Payout{
		{Amount: 30, Status: StatusApproved},
		{Amount: 20, Status: StatusCompleted},
		{Amount: 20, Status: StatusPending},
		{Amount: 500, Status: StatusDeclined},
	}
	l := Compute([]float64{100, 15.5, 4.5}, payouts)

	assert.Equal(t, Ledger{TotalEarnings: 120, ApprovedPayouts: 50, PendingPayouts: 20, AvailableBalance: 50}, l)
}

func TestComputeClampsAtZero(t *testing.T) {
	l := Compute([]float64{10}, []Payout{{Amount: 40, Status: StatusCompleted}})
	assert.Equal(t, 0.0, l.AvailableBalance)
	assert.Equal(t, 40.0, l.ApprovedPayouts)
}

func TestComputeAvoidsFloatDrift(t *testing.T) {
	l := Compute([]float64{0.1, 0.2}, nil)
	assert.Equal(t, 0.3, l.TotalEarnings)
}

func TestCheck(t *testing.T) {
	l := Ledger{AvailableBalance: 50}

	assert.NoError(t, l.Check(50, 50))
	assert.NoError(t, l.Check(10, 50))
	assert.ErrorIs(t, l.Check(50.01, 50), ErrInsufficientBalance)
	assert.ErrorIs(t, l.Check(0, 50), ErrInvalidAmount)
	assert.ErrorIs(t, l.Check(-5, 50), ErrInvalidAmount)

	low := Ledger{AvailableBalance: 49.99}
	assert.ErrorIs(t, low.Check(10, 50), ErrBelowMinimum)

	empty := Ledger{}
	assert.ErrorIs(t, empty.Check(0, 50), ErrBelowMinimum)
	assert.ErrorIs(t, empty.Check(-5, 50), ErrBelowMinimum)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusApproved))
	assert.True(t, CanTransition(StatusPending, StatusDeclined))
	assert.True(t, CanTransition(StatusApproved, StatusCompleted))

	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusApproved, StatusDeclined))
	assert.False(t, CanTransition(StatusDeclined, StatusApproved))
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
}

func TestNormalizeDetails(t *testing.T) {
	d, addr, err := NormalizeDetails("paypal", map[string]string{"paypal_email": "p@x.co"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"email": "p@x.co"}, d)
	assert.Equal(t, "p@x.co", addr)

	d, addr, err = NormalizeDetails("zelle", map[string]string{"zelle_phone": "555-0100"})
	assert.NoError(t, err)
	assert.Equal(t, "555-0100", addr)
	assert.Equal(t, "", d["zelle_email"])

	d, _, err = NormalizeDetails("wise", map[string]string{"email": "w@x.co"})
	assert.NoError(t, err)
	assert.Equal(t, "personal", d["account_type"])

	_, _, err = NormalizeDetails("zelle", map[string]string{})
	assert.EqualError(t, err, "validation failed: payment_details: Please enter your Zelle email or phone")

	_, _, err = NormalizeDetails("bitcoin", nil)
	assert.Error(t, err)
	_, _, err = NormalizeDetails("", nil)
	assert.Error(t, err)
}
