package affiliate

import "time"

type EnrollDTO struct {
	StoreURL string `json:"store_url" validate:"omitempty,max=255"`
}

type StatusDTO struct {
	Status Status `json:"status" validate:"required"`
}

// AffiliateResponse is the affiliate plus its shareable link.
type AffiliateResponse struct {
	ID                     uint              `json:"id,omitempty"`
	AffiliateID            string            `json:"affiliate_id,omitempty"`
	UserID                 string            `json:"user_id,omitempty"`
	Status                 Status            `json:"status"`
	StoreURL               string            `json:"store_url,omitempty"`
	Link                   string            `json:"link,omitempty"`
	AutoPayoutEnabled      bool              `json:"auto_payout_enabled"`
	PreferredPaymentMethod string            `json:"preferred_payment_method,omitempty"`
	PaymentMethodDetails   map[string]string `json:"payment_method_details,omitempty"`
	CreatedAt              *time.Time        `json:"created_at,omitempty"`
}

func toResponse(a *Affiliate, baseURL string) AffiliateResponse {
	created := a.CreatedAt
	return AffiliateResponse{
		ID:                     a.ID,
		AffiliateID:            a.AffiliateID,
		UserID:                 a.UserID,
		Status:                 a.Status,
		StoreURL:               a.StoreURL,
		Link:                   a.Link(baseURL),
		AutoPayoutEnabled:      a.AutoPayoutEnabled,
		PreferredPaymentMethod: a.PreferredPaymentMethod,
		PaymentMethodDetails:   a.PaymentMethodDetails,
		CreatedAt:              &created,
	}
}
