package referral

import (
	"context"
	"time"

	"github.com/commercive/dashboard-api/internal/commission"
	"github.com/commercive/dashboard-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

var upsertColumns = []string{
	"affiliate_id", "agent_name", "business_type", "client_country", "client_group", "client_niche",
	"customer_number", "order_number", "order_time", "quantity_of_order", "quantity_of_products",
	"invoice_total", "store_name",
}

// UpsertBatch writes referrals and commission settings in one transaction.
func (r *Repository) UpsertBatch(ctx context.Context, referrals []Referral, settings []commission.Setting) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(referrals) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "uuid"}},
				DoUpdates: clause.AssignmentColumns(upsertColumns),
			}).CreateInBatches(&referrals, 500).Error
			if err != nil {
				return err
			}
		}
		if len(settings) > 0 {
			return commission.UpsertTx(tx, settings)
		}
		return nil
	})
}

// Save creates or replaces a single referral keyed by uuid.
func (r *Repository) Save(ctx context.Context, ref *Referral) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(ref).Error
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*Referral, error) {
	var ref Referral
	if err := r.DB.WithContext(ctx).First(&ref, id).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

// Update rewrites a referral; the uuid follows customer and order number.
func (r *Repository) Update(ctx context.Context, ref *Referral) error {
	ref.UUID = Key(ref.CustomerNumber, ref.OrderNumber)
	return r.DB.WithContext(ctx).Save(ref).Error
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&Referral{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Filter narrows referral_view listings.
type Filter struct {
	AffiliateID string
	Query       string
	From, To    time.Time
}

func (f Filter) apply(db *gorm.DB) *gorm.DB {
	if f.AffiliateID != "" {
		db = db.Where("affiliate_id = ?", f.AffiliateID)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		db = db.Where("customer_number ILIKE ? OR order_number ILIKE ? OR store_name ILIKE ?", like, like, like)
	}
	if !f.From.IsZero() {
		db = db.Where("order_time >= ?", f.From)
	}
	if !f.To.IsZero() {
		db = db.Where("order_time < ?", f.To)
	}
	return db
}

// ListViews pages through referral_view, newest orders first.
func (r *Repository) ListViews(ctx context.Context, f Filter, p utils.Page) ([]View, int64, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&View{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []View
	err := f.apply(r.DB.WithContext(ctx)).
		Order("order_time DESC").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&list).Error
	return list, total, err
}

// ViewsByAffiliate returns every resolved referral of an affiliate.
func (r *Repository) ViewsByAffiliate(ctx context.Context, affiliateID string) ([]View, error) {
	var list []View
	err := r.DB.WithContext(ctx).Where("affiliate_id = ?", affiliateID).Order("order_time DESC").Find(&list).Error
	return list, err
}

// Commissions returns total_commission for each referral of an affiliate.
func (r *Repository) Commissions(ctx context.Context, affiliateID string) ([]float64, error) {
	var out []float64
	err := r.DB.WithContext(ctx).Model(&View{}).Where("affiliate_id = ?", affiliateID).Pluck("total_commission", &out).Error
	return out, err
}

// Summaries reads referral_summary for every affiliate.
func (r *Repository) Summaries(ctx context.Context) ([]Summary, error) {
	var list []Summary
	err := r.DB.WithContext(ctx).Order("total_commission DESC").Find(&list).Error
	return list, err
}
