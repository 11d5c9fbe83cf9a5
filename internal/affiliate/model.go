package affiliate

import (
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusDeclined  Status = "Declined"
	StatusNone      Status = "None"
	StatusCompleted Status = "Completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined, StatusNone, StatusCompleted:
		return true
	}
	return false
}

// Affiliate is a partner account. AffiliateID is AFF-XXXXXXXX; rows
// written before the format was enforced are fixed by Backfill.
type Affiliate struct {
	ID                     uint              `gorm:"primaryKey" json:"id"`
	AffiliateID            string            `gorm:"size:32;not null;uniqueIndex" json:"affiliate_id"`
	UserID                 string            `gorm:"size:36;not null;uniqueIndex" json:"user_id"`
	Status                 Status            `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	StoreURL               string            `gorm:"size:255" json:"store_url"`
	FormURL                string            `gorm:"size:512" json:"form_url"`
	AutoPayoutEnabled      bool              `gorm:"not null;default:false" json:"auto_payout_enabled"`
	PreferredPaymentMethod string            `gorm:"size:20" json:"preferred_payment_method"`
	PaymentMethodDetails   map[string]string `gorm:"serializer:json" json:"payment_method_details"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

func (Affiliate) TableName() string { return "affiliates" }

// FallbackLink is the referral form address derived from the ID alone.
func FallbackLink(baseURL, affiliateID string) string {
	return strings.TrimRight(baseURL, "/") + "/affiliate-form?ref=" + url.QueryEscape(affiliateID)
}

// Link returns the stored form URL or the fallback.
func (a *Affiliate) Link(baseURL string) string {
	if a.FormURL != "" {
		return a.FormURL
	}
	return FallbackLink(baseURL, a.AffiliateID)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Affiliate{})
}
