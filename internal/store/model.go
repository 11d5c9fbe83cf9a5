package store

import (
	"time"

	"gorm.io/gorm"
)

// Store is a merchant storefront served by the warehouse.
type Store struct {
	ID                 string    `gorm:"primaryKey;size:36" json:"id"`
	StoreName          string    `gorm:"size:255;not null" json:"store_name"`
	StoreURL           string    `gorm:"size:255;not null;uniqueIndex" json:"store_url"`
	IsInventoryFetched bool      `gorm:"not null;default:false" json:"is_inventory_fetched"`
	IsStoreListed      bool      `gorm:"not null;default:false" json:"is_store_listed"`
	CreatedAt          time.Time `json:"created_at"`
}

func (Store) TableName() string { return "stores" }

// Link grants a user access to a store. UUID is user_id-store_id.
type Link struct {
	UUID      string    `gorm:"column:uuid;primaryKey;size:80" json:"uuid"`
	StoreID   string    `gorm:"size:36;not null;index" json:"store_id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Link) TableName() string { return "store_to_user" }

func LinkKey(userID, storeID string) string { return userID + "-" + storeID }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Store{}, &Link{})
}
