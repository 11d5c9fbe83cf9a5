package affiliate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/commercive/dashboard-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrAlreadyEnrolled = utils.NewError(http.StatusConflict, "An affiliate request already exists for this account.")
	ErrNotEnrolled     = utils.NewError(http.StatusNotFound, "This account is not an affiliate.")
	ErrInvalidStatus   = utils.NewError(http.StatusBadRequest, "Status must be Pending, Approved, Declined, None or Completed.")
	ErrCompleted       = utils.NewError(http.StatusConflict, "Completed affiliates cannot be changed.")
	ErrIDExhausted     = errors.New("could not generate a free affiliate id")
)

const maxIDAttempts = 10

// Store is the affiliate persistence used by Service and Backfill.
type Store interface {
	Create(ctx context.Context, a *Affiliate) error
	FindByID(ctx context.Context, id uint) (*Affiliate, error)
	FindByUserID(ctx context.Context, userID string) (*Affiliate, error)
	AffiliateIDExists(ctx context.Context, affiliateID string) (bool, error)
	UpdateStatus(ctx context.Context, id uint, status Status) error
	SetFormURL(ctx context.Context, id uint, formURL string) error
	ListAll(ctx context.Context) ([]Affiliate, error)
	ReassignID(ctx context.Context, id uint, oldID, newID string) error
}

type Service struct {
	store   Store
	baseURL string
	newID   func() (string, error)
}

func NewService(store Store, baseURL string) *Service {
	return &Service{store: store, baseURL: baseURL, newID: utils.NewAffiliateID}
}

// BaseURL is where fallback referral links point.
func (s *Service) BaseURL() string { return s.baseURL }

// freeID draws identifiers until one is not taken.
func (s *Service) freeID(ctx context.Context) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := s.newID()
		if err != nil {
			return "", err
		}
		taken, err := s.store.AffiliateIDExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

// Enroll creates the Pending affiliate row of a user.
func (s *Service) Enroll(ctx context.Context, userID, storeURL string) (*Affiliate, error) {
	existing, err := s.store.FindByUserID(ctx, userID)
	if err == nil && existing != nil {
		return nil, ErrAlreadyEnrolled
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, err := s.freeID(ctx)
	if err != nil {
		return nil, fmt.Errorf("enroll affiliate: %w", err)
	}
	a := &Affiliate{AffiliateID: id, UserID: userID, Status: StatusPending, StoreURL: storeURL}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("enroll affiliate: %w", err)
	}
	return a, nil
}

// EnrollAffiliate is Enroll reduced to the generated identifier.
func (s *Service) EnrollAffiliate(ctx context.Context, userID, storeURL string) (string, error) {
	a, err := s.Enroll(ctx, userID, storeURL)
	if err != nil {
		return "", err
	}
	return a.AffiliateID, nil
}

// Mine returns the affiliate of a user or ErrNotEnrolled.
func (s *Service) Mine(ctx context.Context, userID string) (*Affiliate, error) {
	a, err := s.store.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotEnrolled
	}
	return a, err
}

// ChangeStatus applies an administrator decision. Completed rows are final.
func (s *Service) ChangeStatus(ctx context.Context, id uint, to Status) (*Affiliate, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}
	a, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCompleted {
		return nil, ErrCompleted
	}
	if err := s.store.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	a.Status = to
	return a, nil
}

// RegenerateLink stores the fallback form link as the affiliate's link.
func (s *Service) RegenerateLink(ctx context.Context, userID string) (*Affiliate, error) {
	a, err := s.Mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	link := FallbackLink(s.baseURL, a.AffiliateID)
	if err := s.store.SetFormURL(ctx, a.ID, link); err != nil {
		return nil, err
	}
	a.FormURL = link
	return a, nil
}
