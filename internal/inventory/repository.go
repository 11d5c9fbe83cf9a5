package inventory

import (
	"context"
	"strings"

	"github.com/commercive/dashboard-api/internal/utils"
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) CreateMany(ctx context.Context, items []Item) error {
	return r.DB.WithContext(ctx).Create(&items).Error
}

func (r *Repository) FindByID(ctx context.Context, id string) (*Item, error) {
	var it Item
	if err := r.DB.WithContext(ctx).First(&it, "inventory_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repository) Update(ctx context.Context, it *Item) error {
	return r.DB.WithContext(ctx).Save(it).Error
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&Item{}, "inventory_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByStore pages through a store's items; q matches name or SKU.
func (r *Repository) ListByStore(ctx context.Context, storeURL, q string, p utils.Page) ([]Item, int64, error) {
	db := r.DB.WithContext(ctx).Model(&Item{}).Where("store_url = ?", storeURL)
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("(LOWER(product_name) LIKE ? OR LOWER(sku) LIKE ?)", like, like)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []Item
	err := db.Order("product_name").Offset(p.Offset()).Limit(p.Limit).Find(&list).Error
	return list, total, err
}
