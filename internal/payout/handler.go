package payout

import (
	"context"
	"net/http"

	"github.com/commercive/dashboard-api/internal/auth"
	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/gorilla/mux"
)

// Lister serves the admin payout table and the per-status totals.
type Lister interface {
	List(ctx context.Context, status Status, p utils.Page) ([]Payout, int64, error)
	Totals(ctx context.Context, userID string) ([]StatusTotal, error)
}

type Handler struct {
	Svc  *Service
	Repo Lister
}

func NewHandler(svc *Service, repo Lister) *Handler {
	return &Handler{Svc: svc, Repo: repo}
}

// GET /partners/me/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	l, _, err := h.Svc.Balance(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"ledger": l, "minimum_payout": h.Svc.Minimum()})
}

// GET /partners/me/payouts
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	l, list, err := h.Svc.Balance(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	totals, err := h.Repo.Totals(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if list == nil {
		list = []Payout{}
	}
	utils.JSON(w, http.StatusOK, HistoryResponse{Ledger: l, Totals: totals, Payouts: list})
}

// POST /partners/me/payouts
func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
	var in RequestDTO
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	p, err := h.Svc.Request(r.Context(), auth.UserID(r.Context()), in)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, p)
}

// PUT /partners/me/payment-preferences
func (h *Handler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var in PreferencesDTO
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	a, err := h.Svc.SavePreferences(r.Context(), auth.UserID(r.Context()), in)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"auto_payout_enabled":      a.AutoPayoutEnabled,
		"preferred_payment_method": a.PreferredPaymentMethod,
		"payment_method_details":   a.PaymentMethodDetails,
	})
}

// GET /admin/payouts?status=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		utils.WriteError(w, r, utils.NewValidationError("status", "must be one of Pending Approved Declined Completed"))
		return
	}
	page := utils.ParsePage(r)
	list, total, err := h.Repo.List(r.Context(), status, page)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, utils.Paginated[Payout]{Items: list, Total: total, Page: page.Page, Limit: page.Limit})
}

// PATCH /admin/payouts/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in StatusDTO
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	p, err := h.Svc.Transition(r.Context(), mux.Vars(r)["id"], in.Status, in.Notes)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}
