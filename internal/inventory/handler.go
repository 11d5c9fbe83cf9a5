package inventory

import (
	"context"
	"net/http"
	"strings"

	"github.com/commercive/dashboard-api/internal/appstate"
	"github.com/commercive/dashboard-api/internal/store"
	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Store interface {
	CreateMany(ctx context.Context, items []Item) error
	FindByID(ctx context.Context, id string) (*Item, error)
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id string) error
	ListByStore(ctx context.Context, storeURL, q string, p utils.Page) ([]Item, int64, error)
}

type Handler struct {
	Repo Store
}

func NewHandler(repo Store) *Handler {
	return &Handler{Repo: repo}
}

type ItemDTO struct {
	InventoryID    string         `json:"inventory_id"`
	StoreURL       string         `json:"store_url" validate:"required"`
	ProductID      string         `json:"product_id"`
	ProductName    string         `json:"product_name" validate:"required,max=255"`
	ProductImage   string         `json:"product_image" validate:"omitempty,url"`
	SKU            string         `json:"sku" validate:"max=100"`
	VariantID      *int64         `json:"variant_id"`
	VariantName    string         `json:"variant_name"`
	BackOrders     int            `json:"back_orders" validate:"gte=0"`
	InventoryLevel map[string]int `json:"inventory_level"`
}

func (d ItemDTO) apply(it *Item) {
	it.StoreURL = store.NormalizeURL(d.StoreURL)
	it.ProductID = d.ProductID
	it.ProductName = strings.TrimSpace(d.ProductName)
	it.ProductImage = d.ProductImage
	it.SKU = strings.TrimSpace(d.SKU)
	it.VariantID = d.VariantID
	it.VariantName = d.VariantName
	it.BackOrders = d.BackOrders
	it.InventoryLevel = d.InventoryLevel
}

// GET /inventory?store_url=&q=&page=&limit=
// Without store_url the selected store is used.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	st := appstate.FromContext(r.Context())
	storeURL := store.NormalizeURL(r.URL.Query().Get("store_url"))
	if storeURL == "" && st != nil && st.SelectedStore != nil {
		storeURL = st.SelectedStore.StoreURL
	}
	if storeURL == "" {
		utils.WriteError(w, r, utils.NewValidationError("store_url", "is required"))
		return
	}
	if !st.CanSeeStore(storeURL) {
		utils.WriteError(w, r, utils.ErrForbidden)
		return
	}
	page := utils.ParsePage(r)
	list, total, err := h.Repo.ListByStore(r.Context(), storeURL, r.URL.Query().Get("q"), page)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, utils.Paginated[Item]{Items: list, Total: total, Page: page.Page, Limit: page.Limit})
}

// POST /admin/inventory
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []ItemDTO `json:"items" validate:"required,min=1,dive"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	items := make([]Item, 0, len(body.Items))
	for _, d := range body.Items {
		it := Item{InventoryID: d.InventoryID}
		if it.InventoryID == "" {
			it.InventoryID = uuid.NewString()
		}
		d.apply(&it)
		items = append(items, it)
	}
	if err := h.Repo.CreateMany(r.Context(), items); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, items)
}

// PUT /admin/inventory/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	it, err := h.Repo.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var d ItemDTO
	if err := utils.DecodeJSON(r, &d); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	d.apply(it)
	if err := h.Repo.Update(r.Context(), it); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, it)
}

// DELETE /admin/inventory/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
