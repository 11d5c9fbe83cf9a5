package payout

// RequestDTO asks for a payout. Amount defaults to the whole available
// balance; method and details default to the saved preferences.
type RequestDTO struct {
	Amount         *float64          `json:"amount" validate:"omitempty"`
	PaymentMethod  string            `json:"payment_method" validate:"omitempty,oneof=paypal zelle wise"`
	PaymentDetails map[string]string `json:"payment_details"`
	StoreURL       string            `json:"store_url" validate:"omitempty,max=255"`
	Notes          string            `json:"notes" validate:"omitempty,max=1000"`
}

type StatusDTO struct {
	Status Status `json:"status" validate:"required,oneof=Pending Approved Declined Completed"`
	Notes  string `json:"notes"`
}

type PreferencesDTO struct {
	AutoPayoutEnabled      bool              `json:"auto_payout_enabled"`
	PreferredPaymentMethod string            `json:"preferred_payment_method" validate:"required,oneof=paypal zelle wise"`
	PaymentMethodDetails   map[string]string `json:"payment_method_details"`
}

// HistoryResponse is a partner's payouts with their balance.
type HistoryResponse struct {
	Ledger  Ledger        `json:"ledger"`
	Totals  []StatusTotal `json:"totals"`
	Payouts []Payout      `json:"payouts"`
}
