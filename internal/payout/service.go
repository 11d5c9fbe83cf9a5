package payout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/commercive/dashboard-api/internal/affiliate"
	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrNotApproved       = utils.NewError(http.StatusForbidden, "Your affiliate account is not approved yet.")
	ErrInvalidTransition = utils.NewError(http.StatusConflict, "This payout cannot move to that status.")
	ErrFinal             = utils.NewError(http.StatusConflict, "Completed payouts cannot be changed.")
)

// Outcomes reported to the Recorder.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Store interface {
	Create(ctx context.Context, p *Payout) error
	FindByID(ctx context.Context, id string) (*Payout, error)
	ListByUser(ctx context.Context, userID string) ([]Payout, error)
	UpdateStatus(ctx context.Context, id string, status Status, processedAt *time.Time, notes string) error
}

// Commissions returns the resolved commission of every referral of an affiliate.
type Commissions interface {
	Commissions(ctx context.Context, affiliateID string) ([]float64, error)
}

type Affiliates interface {
	FindByUserID(ctx context.Context, userID string) (*affiliate.Affiliate, error)
	UpdatePaymentPreferences(ctx context.Context, id uint, auto bool, method string, details map[string]string) error
}

type Recorder interface {
	ObservePayoutRequest(outcome string)
}

type Service struct {
	store       Store
	commissions Commissions
	affiliates  Affiliates
	minimum     float64
	strict      bool
	recorder    Recorder
	log         zerolog.Logger
	now         func() time.Time
}

// NewService wires the payout flows. With strict set, admin status changes
// must follow Pending, Approved, Completed (or Pending, Declined); without
// it only Completed payouts are locked.
func NewService(store Store, commissions Commissions, affiliates Affiliates, minimum float64, strict bool, recorder Recorder, log zerolog.Logger) *Service {
	return &Service{
		store:       store,
		commissions: commissions,
		affiliates:  affiliates,
		minimum:     minimum,
		strict:      strict,
		recorder:    recorder,
		log:         log.With().Str("component", "payout").Logger(),
		now:         time.Now,
	}
}

// Minimum is the smallest balance that can be withdrawn.
func (s *Service) Minimum() float64 { return s.minimum }

func (s *Service) affiliateOf(ctx context.Context, userID string) (*affiliate.Affiliate, error) {
	a, err := s.affiliates.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, affiliate.ErrNotEnrolled
	}
	return a, err
}

func (s *Service) ledger(ctx context.Context, a *affiliate.Affiliate) (Ledger, []Payout, error) {
	comm, err := s.commissions.Commissions(ctx, a.AffiliateID)
	if err != nil {
		return Ledger{}, nil, fmt.Errorf("load commissions: %w", err)
	}
	payouts, err := s.store.ListByUser(ctx, a.UserID)
	if err != nil {
		return Ledger{}, nil, fmt.Errorf("load payouts: %w", err)
	}
	return Compute(comm, payouts), payouts, nil
}

// Balance returns the ledger and payout history of a partner.
func (s *Service) Balance(ctx context.Context, userID string) (Ledger, []Payout, error) {
	a, err := s.affiliateOf(ctx, userID)
	if err != nil {
		return Ledger{}, nil, err
	}
	return s.ledger(ctx, a)
}

// Request records a Pending payout. Nothing is written when it is rejected.
func (s *Service) Request(ctx context.Context, userID string, in RequestDTO) (*Payout, error) {
	p, err := s.request(ctx, userID, in)
	if s.recorder != nil {
		switch {
		case err == nil:
			s.recorder.ObservePayoutRequest(OutcomeAccepted)
		case errors.As(err, new(utils.StatusError)):
			s.recorder.ObservePayoutRequest(OutcomeRejected)
		default:
			s.recorder.ObservePayoutRequest(OutcomeError)
		}
	}
	return p, err
}

func (s *Service) request(ctx context.Context, userID string, in RequestDTO) (*Payout, error) {
	a, err := s.affiliateOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a.Status != affiliate.StatusApproved {
		return nil, ErrNotApproved
	}

	method, details := in.PaymentMethod, in.PaymentDetails
	if method == "" {
		method, details = a.PreferredPaymentMethod, a.PaymentMethodDetails
	}
	stored, address, err := NormalizeDetails(method, details)
	if err != nil {
		return nil, err
	}

	l, _, err := s.ledger(ctx, a)
	if err != nil {
		return nil, err
	}
	amount := l.AvailableBalance
	if in.Amount != nil {
		amount = *in.Amount
	}
	if err := l.Check(amount, s.minimum); err != nil {
		s.log.Info().Str("user_id", userID).Float64("amount", amount).Float64("available", l.AvailableBalance).Str("reason", err.Error()).Msg("payout request rejected")
		return nil, err
	}

	now := s.now().UTC()
	p := &Payout{
		ID:             uuid.NewString(),
		UserID:         userID,
		Amount:         amount,
		Status:         StatusPending,
		PaymentMethod:  method,
		PaymentDetails: stored,
		PaypalAddress:  address,
		StoreURL:       in.StoreURL,
		Notes:          in.Notes,
		RequestedAt:    now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payout: %w", err)
	}
	s.log.Info().Str("user_id", userID).Str("payout", p.ID).Float64("amount", amount).Msg("payout requested")
	return p, nil
}

// Transition applies an admin status change. Terminal statuses stamp processed_at.
func (s *Service) Transition(ctx context.Context, id string, to Status, notes string) (*Payout, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == to {
		return p, nil
	}
	if p.Status == StatusCompleted {
		return nil, ErrFinal
	}
	if s.strict && !CanTransition(p.Status, to) {
		return nil, ErrInvalidTransition
	}

	var processed *time.Time
	if to.Terminal() {
		t := s.now().UTC()
		processed = &t
	}
	if err := s.store.UpdateStatus(ctx, id, to, processed, notes); err != nil {
		return nil, err
	}
	p.Status, p.ProcessedAt = to, processed
	if notes != "" {
		p.Notes = notes
	}
	return p, nil
}

// SavePreferences validates and stores the partner's payout preferences.
func (s *Service) SavePreferences(ctx context.Context, userID string, in PreferencesDTO) (*affiliate.Affiliate, error) {
	a, err := s.affiliateOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	details, _, err := NormalizeDetails(in.PreferredPaymentMethod, in.PaymentMethodDetails)
	if err != nil {
		return nil, err
	}
	if err := s.affiliates.UpdatePaymentPreferences(ctx, a.ID, in.AutoPayoutEnabled, in.PreferredPaymentMethod, details); err != nil {
		return nil, err
	}
	a.AutoPayoutEnabled, a.PreferredPaymentMethod, a.PaymentMethodDetails = in.AutoPayoutEnabled, in.PreferredPaymentMethod, details
	return a, nil
}
