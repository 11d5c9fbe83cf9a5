package commission

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/gorilla/mux"
)

// Store is what the settings screen needs from persistence.
type Store interface {
	ListByAffiliate(ctx context.Context, affiliateID string) ([]Setting, error)
	Upsert(ctx context.Context, settings []Setting) error
	Delete(ctx context.Context, affiliateID, customerID string) error
}

type Handler struct {
	Repo Store
}

func NewHandler(repo Store) *Handler {
	return &Handler{Repo: repo}
}

func affiliateFromPath(r *http.Request) (string, error) {
	id := mux.Vars(r)["affiliateID"]
	if !utils.IsValidAffiliateID(id) {
		return "", utils.NewValidationError("affiliateID", "must be a valid affiliate ID")
	}
	return id, nil
}

// GET /admin/affiliates/{affiliateID}/settings
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	affiliateID, err := affiliateFromPath(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	list, err := h.Repo.ListByAffiliate(r.Context(), affiliateID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	out := make([]SettingResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toResponse(s))
	}
	utils.JSON(w, http.StatusOK, out)
}

// PUT /admin/affiliates/{affiliateID}/settings
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	affiliateID, err := affiliateFromPath(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var dto UpsertSettingsDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	settings := make([]Setting, 0, len(dto.Settings))
	for i, in := range dto.Settings {
		method, err := ParseMethod(in.Method)
		if err != nil {
			utils.WriteError(w, r, utils.NewValidationError(fmt.Sprintf("settings[%d].commission_method", i), "must be none, per_order or percentage"))
			return
		}
		settings = append(settings, NewSetting(affiliateID, strings.TrimSpace(in.CustomerID), method, in.Rate))
	}
	if err := h.Repo.Upsert(r.Context(), settings); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	out := make([]SettingResponse, 0, len(settings))
	for _, s := range settings {
		out = append(out, toResponse(s))
	}
	utils.JSON(w, http.StatusOK, out)
}

// DELETE /admin/affiliates/{affiliateID}/settings/{customerID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	affiliateID, err := affiliateFromPath(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Repo.Delete(r.Context(), affiliateID, mux.Vars(r)["customerID"]); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
