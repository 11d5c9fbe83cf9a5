package auth

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// RefreshToken is one link of a rotating refresh chain. Only the hash of
// the cookie value is stored.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"size:36;index"`
	FamilyID  string    `gorm:"size:64;index"`
	Hash      string    `gorm:"size:64;uniqueIndex"`
	Role      string    `gorm:"size:20"`
	ExpiresAt time.Time `gorm:"index"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&RefreshToken{})
}

// Sessions stores refresh chains.
type Sessions interface {
	Create(ctx context.Context, rt *RefreshToken) error
	FindByHash(ctx context.Context, hash string) (*RefreshToken, error)
	Revoke(ctx context.Context, id uint, at time.Time) error
	RevokeFamily(ctx context.Context, familyID string, at time.Time) error
	RevokeUser(ctx context.Context, userID string, at time.Time) error
}

// SessionRepository keeps refresh tokens in Postgres.
type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(ctx context.Context, rt *RefreshToken) error {
	return r.DB.WithContext(ctx).Create(rt).Error
}

func (r *SessionRepository) FindByHash(ctx context.Context, hash string) (*RefreshToken, error) {
	var rt RefreshToken
	if err := r.DB.WithContext(ctx).Where("hash = ?", hash).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, id uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&RefreshToken{}).Where("id = ?", id).Update("revoked_at", at).Error
}

func (r *SessionRepository) RevokeFamily(ctx context.Context, familyID string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&RefreshToken{}).
		Where("family_id = ? AND revoked_at IS NULL", familyID).Update("revoked_at", at).Error
}

func (r *SessionRepository) RevokeUser(ctx context.Context, userID string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).Update("revoked_at", at).Error
}
