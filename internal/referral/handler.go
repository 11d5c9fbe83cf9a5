package referral

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/gorilla/mux"
)

const maxUploadSize = 32 << 20

// Store is the persistence used by the admin referral screens.
type Store interface {
	Save(ctx context.Context, ref *Referral) error
	FindByID(ctx context.Context, id uint) (*Referral, error)
	Update(ctx context.Context, ref *Referral) error
	Delete(ctx context.Context, id uint) error
	ListViews(ctx context.Context, f Filter, p utils.Page) ([]View, int64, error)
	Summaries(ctx context.Context) ([]Summary, error)
}

type Handler struct {
	Repo     Store
	Importer *Importer
}

func NewHandler(repo Store, importer *Importer) *Handler {
	return &Handler{Repo: repo, Importer: importer}
}

// GET /admin/referrals?affiliate_id=&q=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{AffiliateID: q.Get("affiliate_id"), Query: q.Get("q")}
	page := utils.ParsePage(r)
	list, total, err := h.Repo.ListViews(r.Context(), f, page)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, utils.Paginated[View]{Items: list, Total: total, Page: page.Page, Limit: page.Limit})
}

// GET /admin/referrals/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.Summaries(r.Context())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

// POST /admin/referrals
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto ReferralDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	orderTime, err := ParseOrderTime(dto.OrderTime)
	if err != nil {
		utils.WriteError(w, r, utils.NewValidationError("order_time", "must be a date"))
		return
	}
	var ref Referral
	dto.apply(&ref, orderTime)
	if err := h.Repo.Save(r.Context(), &ref); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, ref)
}

// PUT /admin/referrals/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, utils.NewValidationError("id", "must be a number"))
		return
	}
	ref, err := h.Repo.FindByID(r.Context(), uint(id))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	var dto ReferralDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	orderTime, err := ParseOrderTime(dto.OrderTime)
	if err != nil {
		utils.WriteError(w, r, utils.NewValidationError("order_time", "must be a date"))
		return
	}
	dto.apply(ref, orderTime)
	if err := h.Repo.Update(r.Context(), ref); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, ref)
}

// DELETE /admin/referrals/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, utils.NewValidationError("id", "must be a number"))
		return
	}
	if err := h.Repo.Delete(r.Context(), uint(id)); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /admin/referrals/template
func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="referral_import_template.csv"`)
	if err := WriteTemplate(w); err != nil {
		utils.WriteError(w, r, err)
	}
}

// POST /admin/referrals/import (multipart: file, agent_name)
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, name, err := uploadedFile(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	defer file.Close()

	res, err := h.Importer.Import(r.Context(), name, file, r.FormValue("agent_name"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

// POST /admin/referrals/import/preview
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, name, err := uploadedFile(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	defer file.Close()

	rows, err := h.Importer.Parse(r.Context(), name, file)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, PreviewResponse{Rows: rows, Settings: len(SettingsFromRows(rows))})
}

func uploadedFile(r *http.Request) (io.ReadCloser, string, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, "", utils.NewValidationError("file", "upload a file as multipart form data")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", utils.NewValidationError("file", "is required")
	}
	if _, err := DetectFormat(header.Filename); err != nil {
		file.Close()
		return nil, "", err
	}
	return file, header.Filename, nil
}
