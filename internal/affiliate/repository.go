package affiliate

import (
	"context"
	"errors"

	"github.com/commercive/dashboard-api/internal/commission"
	"github.com/commercive/dashboard-api/internal/lead"
	"github.com/commercive/dashboard-api/internal/referral"
	"github.com/commercive/dashboard-api/internal/utils"
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(ctx context.Context, a *Affiliate) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*Affiliate, error) {
	var a Affiliate
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID string) (*Affiliate, error) {
	var a Affiliate
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) FindByAffiliateID(ctx context.Context, affiliateID string) (*Affiliate, error) {
	var a Affiliate
	if err := r.DB.WithContext(ctx).Where("affiliate_id = ?", affiliateID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) AffiliateIDExists(ctx context.Context, affiliateID string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&Affiliate{}).Where("affiliate_id = ?", affiliateID).Count(&n).Error
	return n > 0, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id uint, status Status) error {
	return r.DB.WithContext(ctx).Model(&Affiliate{}).Where("id = ?", id).Update("status", status).Error
}

func (r *Repository) SetFormURL(ctx context.Context, id uint, formURL string) error {
	return r.DB.WithContext(ctx).Model(&Affiliate{}).Where("id = ?", id).Update("form_url", formURL).Error
}

// UpdatePaymentPreferences stores the payout defaults chosen by the partner.
func (r *Repository) UpdatePaymentPreferences(ctx context.Context, id uint, auto bool, method string, details map[string]string) error {
	return r.DB.WithContext(ctx).Model(&Affiliate{ID: id}).Select("auto_payout_enabled", "preferred_payment_method", "payment_method_details").
		Updates(&Affiliate{AutoPayoutEnabled: auto, PreferredPaymentMethod: method, PaymentMethodDetails: details}).Error
}

// List pages through affiliates, optionally by status.
func (r *Repository) List(ctx context.Context, status Status, p utils.Page) ([]Affiliate, int64, error) {
	q := r.DB.WithContext(ctx).Model(&Affiliate{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []Affiliate
	err := q.Order("created_at DESC").Limit(p.Limit).Offset(p.Offset()).Find(&list).Error
	return list, total, err
}

func (r *Repository) ListAll(ctx context.Context) ([]Affiliate, error) {
	var list []Affiliate
	err := r.DB.WithContext(ctx).Order("id").Find(&list).Error
	return list, err
}

// ReassignID replaces an affiliate identifier everywhere it is referenced,
// in one transaction.
func (r *Repository) ReassignID(ctx context.Context, id uint, oldID, newID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Affiliate{}).Where("id = ? AND affiliate_id = ?", id, oldID).Update("affiliate_id", newID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("affiliate changed while repairing its id")
		}
		if err := tx.Model(&referral.Referral{}).Where("affiliate_id = ?", oldID).Update("affiliate_id", newID).Error; err != nil {
			return err
		}
		if err := tx.Model(&commission.Setting{}).Where("affiliate = ?", oldID).Updates(map[string]any{
			"affiliate": newID,
			"uid":       gorm.Expr("? || ':' || customer_id", newID),
		}).Error; err != nil {
			return err
		}
		return tx.Model(&lead.Lead{}).Where("source = ?", oldID).Update("source", newID).Error
	})
}
