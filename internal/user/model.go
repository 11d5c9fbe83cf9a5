package user

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

// User is a dashboard account. VisiblePages and VisibleStore drive what a
// non-admin sees.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	UserName     string    `gorm:"size:100" json:"user_name"`
	PhoneNumber  string    `gorm:"size:50" json:"phone_number"`
	Role         Role      `gorm:"size:20;not null;default:'user'" json:"role"`
	ReferralCode string    `gorm:"size:32" json:"referral_code,omitempty"`
	VisiblePages []string  `gorm:"serializer:json" json:"visible_pages"`
	VisibleStore []string  `gorm:"serializer:json" json:"visible_store"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Confirmed    bool      `gorm:"not null;default:false" json:"confirmed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "user" }

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestDeclined RequestStatus = "Declined"
)

// SignupRequest is an access request from someone without an account.
type SignupRequest struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Email       string        `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FirstName   string        `gorm:"size:100" json:"first_name"`
	LastName    string        `gorm:"size:100" json:"last_name"`
	UserName    string        `gorm:"size:100" json:"user_name"`
	PhoneNumber string        `gorm:"size:50" json:"phone_number"`
	Status      RequestStatus `gorm:"size:20;not null;default:'Pending'" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (SignupRequest) TableName() string { return "signup_request" }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &SignupRequest{})
}
