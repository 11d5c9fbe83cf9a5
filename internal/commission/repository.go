package commission

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wraps the affiliate_customer_setting table.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ListByAffiliate returns every setting row of an affiliate.
func (r *Repository) ListByAffiliate(ctx context.Context, affiliateID string) ([]Setting, error) {
	var list []Setting
	err := r.DB.WithContext(ctx).Where("affiliate = ?", affiliateID).Order("customer_id").Find(&list).Error
	return list, err
}

// Upsert inserts or replaces settings keyed by uid.
func (r *Repository) Upsert(ctx context.Context, settings []Setting) error {
	if len(settings) == 0 {
		return nil
	}
	return UpsertTx(r.DB.WithContext(ctx), settings)
}

// UpsertTx runs the upsert on an existing transaction.
func UpsertTx(tx *gorm.DB, settings []Setting) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"affiliate", "customer_id", "commission_method", "commission_rate"}),
	}).Create(&settings).Error
}

// Delete removes the setting for one customer.
func (r *Repository) Delete(ctx context.Context, affiliateID, customerID string) error {
	res := r.DB.WithContext(ctx).Where("uid = ?", UID(affiliateID, customerID)).Delete(&Setting{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
