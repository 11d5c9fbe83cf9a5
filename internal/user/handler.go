package user

import (
	"context"
	"net/http"
	"strconv"

	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/gorilla/mux"
)

// Store is the persistence behind the admin users and roles screens.
type Store interface {
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, q string, p utils.Page) ([]User, int64, error)
	UpdateAccess(ctx context.Context, id string, role Role, pages, stores []string) error
	Delete(ctx context.Context, id string) error
	ListSignupRequests(ctx context.Context, status RequestStatus) ([]SignupRequest, error)
	UpdateSignupRequestStatus(ctx context.Context, id uint, status RequestStatus) error
}

type Handler struct {
	Repo Store
}

func NewHandler(repo Store) *Handler {
	return &Handler{Repo: repo}
}

// GET /admin/users?q=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r)
	list, total, err := h.Repo.List(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, utils.Paginated[User]{Items: list, Total: total, Page: page.Page, Limit: page.Limit})
}

// GET /admin/users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Repo.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, u)
}

// PUT /admin/users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	u, err := h.Repo.FindByID(r.Context(), id)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var dto UpdateAccessDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	pages := NormalizePages(dto.VisiblePages)
	if err := h.Repo.UpdateAccess(r.Context(), id, Role(dto.Role), pages, dto.VisibleStore); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	u.Role, u.VisiblePages, u.VisibleStore = Role(dto.Role), pages, dto.VisibleStore
	utils.JSON(w, http.StatusOK, u)
}

// DELETE /admin/users/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /admin/signup-requests?status=
func (h *Handler) ListSignupRequests(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.ListSignupRequests(r.Context(), RequestStatus(r.URL.Query().Get("status")))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

// PATCH /admin/signup-requests/{id}
func (h *Handler) UpdateSignupRequest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, utils.NewValidationError("id", "must be a number"))
		return
	}
	var dto SignupRequestStatusDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Repo.UpdateSignupRequestStatus(r.Context(), uint(id), RequestStatus(dto.Status)); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"id": id, "status": dto.Status})
}
