package store

import (
	"context"
	"net/http"

	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Storer interface {
	Create(ctx context.Context, s *Store) error
	FindByID(ctx context.Context, id string) (*Store, error)
	Update(ctx context.Context, s *Store) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q string, p utils.Page) ([]Store, int64, error)
	LinkUser(ctx context.Context, userID, storeID string) error
	UnlinkUser(ctx context.Context, userID, storeID string) error
	ReplaceLinks(ctx context.Context, userID string, storeIDs []string) error
}

type Handler struct {
	Repo Storer
}

func NewHandler(repo Storer) *Handler {
	return &Handler{Repo: repo}
}

// GET /admin/stores?q=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r)
	list, total, err := h.Repo.List(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, utils.Paginated[Store]{Items: list, Total: total, Page: page.Page, Limit: page.Limit})
}

// POST /admin/stores
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto StoreDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	s := &Store{ID: uuid.NewString()}
	dto.apply(s)
	if err := h.Repo.Create(r.Context(), s); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, s)
}

// PUT /admin/stores/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	s, err := h.Repo.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var dto StoreDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	dto.apply(s)
	if err := h.Repo.Update(r.Context(), s); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, s)
}

// DELETE /admin/stores/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /admin/stores/{id}/users/{userID}
func (h *Handler) Link(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := h.Repo.FindByID(r.Context(), vars["id"]); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Repo.LinkUser(r.Context(), vars["userID"], vars["id"]); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /admin/stores/{id}/users/{userID}
func (h *Handler) Unlink(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.Repo.UnlinkUser(r.Context(), vars["userID"], vars["id"]); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /admin/users/{userID}/stores
func (h *Handler) ReplaceLinks(w http.ResponseWriter, r *http.Request) {
	var dto LinksDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Repo.ReplaceLinks(r.Context(), mux.Vars(r)["userID"], dto.StoreIDs); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
