package affiliate

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/commercive/dashboard-api/internal/auth"
	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/gorilla/mux"
)

// Lister pages through affiliates for the admin table.
type Lister interface {
	List(ctx context.Context, status Status, p utils.Page) ([]Affiliate, int64, error)
}

type Handler struct {
	Svc      *Service
	Repo     Lister
	Backfill *Backfill
}

func NewHandler(svc *Service, repo Lister, backfill *Backfill) *Handler {
	return &Handler{Svc: svc, Repo: repo, Backfill: backfill}
}

// GET /partners/me/affiliate
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	a, err := h.Svc.Mine(r.Context(), auth.UserID(r.Context()))
	if errors.Is(err, ErrNotEnrolled) {
		utils.JSON(w, http.StatusOK, AffiliateResponse{Status: StatusNone})
		return
	}
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, toResponse(a, h.Svc.BaseURL()))
}

// POST /partners/me/affiliate
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	var dto EnrollDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	a, err := h.Svc.Enroll(r.Context(), auth.UserID(r.Context()), dto.StoreURL)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, toResponse(a, h.Svc.BaseURL()))
}

// POST /partners/me/link
func (h *Handler) RegenerateLink(w http.ResponseWriter, r *http.Request) {
	a, err := h.Svc.RegenerateLink(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"link": a.FormURL})
}

// GET /admin/affiliates?status=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		utils.WriteError(w, r, ErrInvalidStatus)
		return
	}
	page := utils.ParsePage(r)
	list, total, err := h.Repo.List(r.Context(), status, page)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	out := make([]AffiliateResponse, 0, len(list))
	for i := range list {
		out = append(out, toResponse(&list[i], h.Svc.BaseURL()))
	}
	utils.JSON(w, http.StatusOK, utils.Paginated[AffiliateResponse]{Items: out, Total: total, Page: page.Page, Limit: page.Limit})
}

// PATCH /admin/affiliates/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, utils.NewValidationError("id", "must be a number"))
		return
	}
	var dto StatusDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	a, err := h.Svc.ChangeStatus(r.Context(), uint(id), dto.Status)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, toResponse(a, h.Svc.BaseURL()))
}

// POST /admin/affiliates/backfill
func (h *Handler) RunBackfill(w http.ResponseWriter, r *http.Request) {
	report, err := h.Backfill.Run(r.Context())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, report)
}
