package commission

import (
	"gorm.io/gorm"
)

// Method is how commission is derived from an order.
type Method int

const (
	MethodNone       Method = 0
	MethodPerOrder   Method = 1
	MethodPercentage Method = 2
)

// DefaultCustomer marks the affiliate wide setting used when a customer
// has no row of its own.
const DefaultCustomer = "*"

// Setting is a commission override for one (affiliate, customer) pair.
type Setting struct {
	UID              string  `gorm:"primaryKey;size:64" json:"uid"`
	Affiliate        string  `gorm:"size:12;not null;index" json:"affiliate"`
	CustomerID       string  `gorm:"size:50;not null" json:"customer_id"`
	CommissionMethod Method  `gorm:"not null;default:0" json:"commission_method"`
	CommissionRate   float64 `gorm:"not null;default:0" json:"commission_rate"`
}

func (Setting) TableName() string { return "affiliate_customer_setting" }

// UID builds the composite key affiliate:customer.
func UID(affiliateID, customerID string) string {
	return affiliateID + ":" + customerID
}

// NewSetting returns a setting with its key filled in.
func NewSetting(affiliateID, customerID string, method Method, rate float64) Setting {
	return Setting{
		UID:              UID(affiliateID, customerID),
		Affiliate:        affiliateID,
		CustomerID:       customerID,
		CommissionMethod: method,
		CommissionRate:   rate,
	}
}

// Migrate creates the settings table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Setting{})
}
