package user

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

func (r *Repository) Create(ctx context.Context, u *User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// List pages through users; q matches email, names and user name.
func (r *Repository) List(ctx context.Context, q string, p utils.Page) ([]User, int64, error) {
	db := r.DB.WithContext(ctx).Model(&User{})
	if q != "" {
		like := "%" + q + "%"
		db = db.Where("email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR user_name ILIKE ?", like, like, like, like)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []User
	err := db.Order("created_at DESC").Limit(p.Limit).Offset(p.Offset()).Find(&list).Error
	return list, total, err
}

// UpdateAccess sets role and visibility in one statement.
func (r *Repository) UpdateAccess(ctx context.Context, id string, role Role, pages, stores []string) error {
	return r.DB.WithContext(ctx).Model(&User{ID: id}).Select("role", "visible_pages", "visible_store").
		Updates(&User{Role: role, VisiblePages: pages, VisibleStore: stores}).Error
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) MarkConfirmed(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("confirmed", true).Error
}

func (r *Repository) SetPassword(ctx context.Context, id, hash string) error {
	return r.DB.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

func (r *Repository) FindSignupRequest(ctx context.Context, email string) (*SignupRequest, error) {
	var req SignupRequest
	if err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *Repository) CreateSignupRequest(ctx context.Context, req *SignupRequest) error {
	return r.DB.WithContext(ctx).Create(req).Error
}

func (r *Repository) ListSignupRequests(ctx context.Context, status RequestStatus) ([]SignupRequest, error) {
	db := r.DB.WithContext(ctx)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	var list []SignupRequest
	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *Repository) UpdateSignupRequestStatus(ctx context.Context, id uint, status RequestStatus) error {
	res := r.DB.WithContext(ctx).Model(&SignupRequest{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
