package inventory

import (
	"time"

	"gorm.io/gorm"
)

// Item is one product variant stocked for a store.
type Item struct {
	InventoryID    string         `gorm:"primaryKey;size:64" json:"inventory_id"`
	StoreURL       string         `gorm:"size:255;not null;index" json:"store_url"`
	ProductID      string         `gorm:"size:64" json:"product_id"`
	ProductName    string         `gorm:"size:255" json:"product_name"`
	ProductImage   string         `gorm:"size:512" json:"product_image"`
	SKU            string         `gorm:"column:sku;size:100;index" json:"sku"`
	VariantID      *int64         `json:"variant_id"`
	VariantName    string         `gorm:"size:255" json:"variant_name"`
	BackOrders     int            `gorm:"not null;default:0" json:"back_orders"`
	InventoryLevel map[string]int `gorm:"serializer:json" json:"inventory_level"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (Item) TableName() string { return "inventory" }

// Available sums the stocked quantity over every location.
func (i *Item) Available() int {
	n := 0
	for _, q := range i.InventoryLevel {
		n += q
	}
	return n
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Item{})
}
