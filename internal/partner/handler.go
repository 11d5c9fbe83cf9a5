package partner

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/commercive/dashboard-api/internal/affiliate"
	"github.com/commercive/dashboard-api/internal/auth"
	"github.com/commercive/dashboard-api/internal/lead"
	"github.com/commercive/dashboard-api/internal/payout"
	"github.com/commercive/dashboard-api/internal/referral"
	"github.com/commercive/dashboard-api/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Affiliates interface {
	FindByUserID(ctx context.Context, userID string) (*affiliate.Affiliate, error)
}

type Referrals interface {
	ViewsByAffiliate(ctx context.Context, affiliateID string) ([]referral.View, error)
}

type Leads interface {
	ListBySource(ctx context.Context, source string) ([]lead.Lead, error)
	CountBySource(ctx context.Context, source string) (int64, error)
}

type Balances interface {
	Balance(ctx context.Context, userID string) (payout.Ledger, []payout.Payout, error)
}

// DashboardResponse is everything the partner landing screen shows.
type DashboardResponse struct {
	AffiliateID string           `json:"affiliate_id"`
	Status      affiliate.Status `json:"status"`
	Link        string           `json:"link"`
	Stats       Stats            `json:"stats"`
	Ledger      payout.Ledger    `json:"ledger"`
	Recent      []payout.Payout  `json:"recent_payouts"`
}

const recentPayouts = 5

type Handler struct {
	Affiliates Affiliates
	Referrals  Referrals
	Leads      Leads
	Balances   Balances
	BaseURL    string
	now        func() time.Time
}

func NewHandler(affiliates Affiliates, referrals Referrals, leads Leads, balances Balances, baseURL string) *Handler {
	return &Handler{Affiliates: affiliates, Referrals: referrals, Leads: leads, Balances: balances, BaseURL: baseURL, now: time.Now}
}

func (h *Handler) affiliate(ctx context.Context) (*affiliate.Affiliate, error) {
	a, err := h.Affiliates.FindByUserID(ctx, auth.UserID(ctx))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, affiliate.ErrNotEnrolled
	}
	return a, err
}

// GET /partners/me/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := h.affiliate(ctx)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var (
		views   []referral.View
		leads   int64
		ledger  payout.Ledger
		payouts []payout.Payout
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		views, err = h.Referrals.ViewsByAffiliate(gctx, a.AffiliateID)
		return err
	})
	g.Go(func() (err error) {
		leads, err = h.Leads.CountBySource(gctx, a.AffiliateID)
		return err
	})
	g.Go(func() (err error) {
		ledger, payouts, err = h.Balances.Balance(gctx, a.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if len(payouts) > recentPayouts {
		payouts = payouts[:recentPayouts]
	}
	if payouts == nil {
		payouts = []payout.Payout{}
	}
	utils.JSON(w, http.StatusOK, DashboardResponse{
		AffiliateID: a.AffiliateID,
		Status:      a.Status,
		Link:        a.Link(h.BaseURL),
		Stats:       Compute(views, leads, h.now()),
		Ledger:      ledger,
		Recent:      payouts,
	})
}

// GET /partners/me/referrals
func (h *Handler) ListReferrals(w http.ResponseWriter, r *http.Request) {
	a, err := h.affiliate(r.Context())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	views, err := h.Referrals.ViewsByAffiliate(r.Context(), a.AffiliateID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if views == nil {
		views = []referral.View{}
	}
	utils.JSON(w, http.StatusOK, views)
}

// GET /partners/me/leads
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	a, err := h.affiliate(r.Context())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	leads, err := h.Leads.ListBySource(r.Context(), a.AffiliateID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if leads == nil {
		leads = []lead.Lead{}
	}
	utils.JSON(w, http.StatusOK, leads)
}
