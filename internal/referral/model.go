package referral

import (
	"time"

	"gorm.io/gorm"
)

// Referral is one attributed order. UUID is customer_number-order_number
// and is the upsert key.
type Referral struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UUID               string    `gorm:"column:uuid;size:120;not null;uniqueIndex" json:"uuid"`
	AffiliateID        string    `gorm:"size:12;not null;index" json:"affiliate_id"`
	AgentName          string    `gorm:"size:255" json:"agent_name"`
	BusinessType       string    `gorm:"size:255" json:"business_type"`
	ClientCountry      string    `gorm:"size:100" json:"client_country"`
	ClientGroup        string    `gorm:"size:255" json:"client_group"`
	ClientNiche        string    `gorm:"size:255" json:"client_niche"`
	CustomerNumber     string    `gorm:"size:50;not null;index" json:"customer_number"`
	OrderNumber        string    `gorm:"size:60;not null" json:"order_number"`
	OrderTime          time.Time `gorm:"not null;index" json:"order_time"`
	QuantityOfOrder    int       `gorm:"not null;default:0" json:"quantity_of_order"`
	QuantityOfProducts int       `gorm:"not null;default:0" json:"quantity_of_products"`
	InvoiceTotal       float64   `gorm:"not null;default:0" json:"invoice_total"`
	StoreName          string    `gorm:"size:255" json:"store_name"`
	CreatedAt          time.Time `json:"created_at"`
}

func (Referral) TableName() string { return "referrals" }

// Key builds the composite identifier used for idempotent upserts.
func Key(customerNumber, orderNumber string) string {
	return customerNumber + "-" + orderNumber
}

// View is a row of referral_view: the referral plus its resolved commission.
type View struct {
	Referral
	UserID           string  `json:"user_id"`
	CommissionMethod int     `json:"commission_method"`
	CommissionRate   float64 `json:"commission_rate"`
	TotalCommission  float64 `json:"total_commission"`
}

func (View) TableName() string { return "referral_view" }

// Summary is a row of referral_summary.
type Summary struct {
	AffiliateID     string  `json:"affiliate_id"`
	TotalOrders     int64   `json:"total_orders"`
	TotalCustomers  int64   `json:"total_customers"`
	TotalInvoice    float64 `json:"total_invoice"`
	TotalCommission float64 `json:"total_commission"`
}

func (Summary) TableName() string { return "referral_summary" }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Referral{})
}
