package payout

import (
	"net/http"

	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = utils.NewError(http.StatusBadRequest, "Payout amount must be greater than zero.")
	ErrBelowMinimum        = utils.NewError(http.StatusBadRequest, "Available balance is below the minimum payout amount.")
	ErrInsufficientBalance = utils.NewError(http.StatusBadRequest, "Requested amount exceeds your available balance.")
)

// Ledger is the balance of one partner.
type Ledger struct {
	TotalEarnings    float64 `json:"total_earnings"`
	ApprovedPayouts  float64 `json:"approved_payouts_total"`
	PendingPayouts   float64 `json:"pending_payouts"`
	AvailableBalance float64 `json:"available_balance"`
}

// Compute sums commissions and payouts. Approved and Completed payouts
// count as paid, Pending ones are reserved, Declined ones are ignored.
// The available balance never goes below zero.
func Compute(commissions []float64, payouts []Payout) Ledger {
	earned := decimal.Zero
	for _, c := range commissions {
		earned = earned.Add(decimal.NewFromFloat(c))
	}
	approved, pending := decimal.Zero, decimal.Zero
	for _, p := range payouts {
		amt := decimal.NewFromFloat(p.Amount)
		switch p.Status {
		case StatusApproved, StatusCompleted:
			approved = approved.Add(amt)
		case StatusPending:
			pending = pending.Add(amt)
		}
	}
	available := earned.Sub(approved).Sub(pending)
	if available.IsNegative() {
		available = decimal.Zero
	}
	return Ledger{
		TotalEarnings:    earned.InexactFloat64(),
		ApprovedPayouts:  approved.InexactFloat64(),
		PendingPayouts:   pending.InexactFloat64(),
		AvailableBalance: available.InexactFloat64(),
	}
}

// Check accepts amount when the balance reaches minimum and covers amount.
// A balance under the minimum is reported before the amount is looked at.
func (l Ledger) Check(amount, minimum float64) error {
	available := decimal.NewFromFloat(l.AvailableBalance)
	if available.LessThan(decimal.NewFromFloat(minimum)) {
		return ErrBelowMinimum
	}
	amt := decimal.NewFromFloat(amount)
	if !amt.IsPositive() {
		return ErrInvalidAmount
	}
	if amt.GreaterThan(available) {
		return ErrInsufficientBalance
	}
	return nil
}
