package lead

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead is an inquiry sent through an affiliate's referral form. Source
// holds the affiliate ID the visitor arrived with.
type Lead struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Email            string    `gorm:"size:255;not null" json:"email"`
	Phone            string    `gorm:"size:50" json:"phone"`
	WebURL           string    `gorm:"size:255" json:"webUrl"`
	BusinessPlatform string    `gorm:"size:100" json:"businessPlatform"`
	OrderUnits       string    `gorm:"size:50" json:"orderUnits"`
	Source           string    `gorm:"size:32;index" json:"source"`
	CreatedAt        time.Time `json:"created_at"`
}

func (Lead) TableName() string { return "new_leads" }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Lead{})
}

// ConversionRate is referral orders per lead as a percentage.
func ConversionRate(referrals, leads int64) float64 {
	if leads <= 0 {
		return 0
	}
	return float64(referrals) / float64(leads) * 100
}

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(ctx context.Context, l *Lead) error {
	return r.DB.WithContext(ctx).Create(l).Error
}

func (r *Repository) ListBySource(ctx context.Context, source string) ([]Lead, error) {
	var list []Lead
	err := r.DB.WithContext(ctx).Where("source = ?", source).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *Repository) CountBySource(ctx context.Context, source string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&Lead{}).Where("source = ?", source).Count(&n).Error
	return n, err
}

func (r *Repository) List(ctx context.Context, source string, p utils.Page) ([]Lead, int64, error) {
	q := r.DB.WithContext(ctx).Model(&Lead{})
	if source != "" {
		q = q.Where("source = ?", source)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []Lead
	err := q.Order("created_at DESC").Limit(p.Limit).Offset(p.Offset()).Find(&list).Error
	return list, total, err
}

// Store is the lead persistence the handlers use.
type Store interface {
	Create(ctx context.Context, l *Lead) error
	List(ctx context.Context, source string, p utils.Page) ([]Lead, int64, error)
}

type SubmitDTO struct {
	Name             string `json:"name" validate:"required,max=255"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"max=50"`
	WebURL           string `json:"webUrl" validate:"max=255"`
	BusinessPlatform string `json:"businessPlatform" validate:"max=100"`
	OrderUnits       string `json:"orderUnits" validate:"max=50"`
	Source           string `json:"source" validate:"omitempty,affiliateid"`
}

type Handler struct {
	Repo Store
}

func NewHandler(repo Store) *Handler {
	return &Handler{Repo: repo}
}

// POST /affiliate-form?ref=AFF-XXXXXXXX
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var dto SubmitDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	source := strings.TrimSpace(r.URL.Query().Get("ref"))
	if source == "" {
		source = dto.Source
	} else if !utils.IsValidAffiliateID(source) {
		utils.WriteError(w, r, utils.NewValidationError("ref", "must be a valid affiliate ID"))
		return
	}

	l := &Lead{
		ID:               uuid.NewString(),
		Name:             dto.Name,
		Email:            strings.ToLower(strings.TrimSpace(dto.Email)),
		Phone:            dto.Phone,
		WebURL:           dto.WebURL,
		BusinessPlatform: dto.BusinessPlatform,
		OrderUnits:       dto.OrderUnits,
		Source:           source,
	}
	if err := h.Repo.Create(r.Context(), l); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, l)
}

// GET /admin/leads?source=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r)
	list, total, err := h.Repo.List(r.Context(), r.URL.Query().Get("source"), page)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, utils.Paginated[Lead]{Items: list, Total: total, Page: page.Page, Limit: page.Limit})
}
