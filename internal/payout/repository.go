package payout

import (
	"context"
	"time"

	"github.com/commercive/dashboard-api/internal/utils"
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(ctx context.Context, p *Payout) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *Repository) FindByID(ctx context.Context, id string) (*Payout, error) {
	var p Payout
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser returns every payout of a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Payout, error) {
	var list []Payout
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("requested_at DESC").Find(&list).Error
	return list, err
}

func (r *Repository) List(ctx context.Context, status Status, p utils.Page) ([]Payout, int64, error) {
	q := r.DB.WithContext(ctx).Model(&Payout{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []Payout
	err := q.Order("requested_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&list).Error
	return list, total, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, processedAt *time.Time, notes string) error {
	updates := map[string]any{"status": status, "processed_at": processedAt}
	if notes != "" {
		updates["notes"] = notes
	}
	res := r.DB.WithContext(ctx).Model(&Payout{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Totals reads payout_view for one user.
func (r *Repository) Totals(ctx context.Context, userID string) ([]StatusTotal, error) {
	var out []StatusTotal
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&out).Error
	return out, err
}
