package payout

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusDeclined  Status = "Declined"
	StatusCompleted Status = "Completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined, StatusCompleted:
		return true
	}
	return false
}

// Terminal statuses stamp processed_at.
func (s Status) Terminal() bool { return s == StatusDeclined || s == StatusCompleted }

// Pending -> Approved -> Completed, or Pending -> Declined.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusDeclined},
	StatusApproved: {StatusCompleted},
}

// CanTransition reports whether from may move to to without skipping a step.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Payout is a partner's withdrawal request.
type Payout struct {
	ID             string            `gorm:"primaryKey;size:36" json:"id"`
	UserID         string            `gorm:"size:36;not null;index" json:"user_id"`
	Amount         float64           `gorm:"not null" json:"amount"`
	Status         Status            `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	PaymentMethod  string            `gorm:"size:20" json:"payment_method"`
	PaymentDetails map[string]string `gorm:"serializer:json" json:"payment_details"`
	// PaypalAddress is the payee address for older clients that only read this column.
	PaypalAddress string     `gorm:"size:255" json:"paypal_address"`
	StoreURL      string     `gorm:"size:255" json:"store_url"`
	Notes         string     `gorm:"type:text" json:"notes"`
	RequestedAt   time.Time  `json:"requested_at"`
	ProcessedAt   *time.Time `json:"processed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Payout) TableName() string { return "payouts" }

// StatusTotal is one row of payout_view.
type StatusTotal struct {
	UserID      string  `json:"user_id"`
	Status      Status  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
	TotalCount  int64   `json:"total_count"`
}

func (StatusTotal) TableName() string { return "payout_view" }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Payout{})
}
