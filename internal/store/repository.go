package store

import (
	"context"
	"strings"

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

func (r *Repository) Create(ctx context.Context, s *Store) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *Repository) FindByID(ctx context.Context, id string) (*Store, error) {
	var s Store
	if err := r.DB.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Update(ctx context.Context, s *Store) error {
	return r.DB.WithContext(ctx).Save(s).Error
}

// Delete removes the store and every user link to it.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&Link{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Store{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *Repository) List(ctx context.Context, q string, p utils.Page) ([]Store, int64, error) {
	db := r.DB.WithContext(ctx).Model(&Store{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(store_name) LIKE ? OR LOWER(store_url) LIKE ?", like, like)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []Store
	err := db.Order("store_name").Offset(p.Offset()).Limit(p.Limit).Find(&list).Error
	return list, total, err
}

// ListAll returns every store, used for admins.
func (r *Repository) ListAll(ctx context.Context) ([]Store, error) {
	var list []Store
	err := r.DB.WithContext(ctx).Order("store_name").Find(&list).Error
	return list, err
}

// ListForUser returns the stores linked to a user.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]Store, error) {
	var list []Store
	err := r.DB.WithContext(ctx).
		Joins("JOIN store_to_user ON store_to_user.store_id = stores.id").
		Where("store_to_user.user_id = ?", userID).
		Order("stores.store_name").
		Find(&list).Error
	return list, err
}

// LinkUser is idempotent.
func (r *Repository) LinkUser(ctx context.Context, userID, storeID string) error {
	l := Link{UUID: LinkKey(userID, storeID), StoreID: storeID, UserID: userID}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&l).Error
}

func (r *Repository) UnlinkUser(ctx context.Context, userID, storeID string) error {
	return r.DB.WithContext(ctx).Delete(&Link{}, "uuid = ?", LinkKey(userID, storeID)).Error
}

// ReplaceLinks sets the exact store list of a user.
func (r *Repository) ReplaceLinks(ctx context.Context, userID string, storeIDs []string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&Link{}).Error; err != nil {
			return err
		}
		if len(storeIDs) == 0 {
			return nil
		}
		links := make([]Link, 0, len(storeIDs))
		for _, id := range storeIDs {
			links = append(links, Link{UUID: LinkKey(userID, id), StoreID: id, UserID: userID})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
}
