package user

import "slices"

// Pages a non-admin account can be granted.
const (
	PageHome      = "home"
	PageDashboard = "dashboard"
	PageInventory = "inventory"
	PageStores    = "stores"
	PagePartners  = "partners"
	PagePayouts   = "payouts"
	PageLeads     = "leads"
	PageSupport   = "support"
)

var AllPages = []string{PageHome, PageDashboard, PageInventory, PageStores, PagePartners, PagePayouts, PageLeads, PageSupport}

type UpdateAccessDTO struct {
	Role         string   `json:"role" validate:"required,oneof=admin user"`
	VisiblePages []string `json:"visible_pages" validate:"dive,oneof=home dashboard inventory stores partners payouts leads support"`
	VisibleStore []string `json:"visible_store"`
}

type SignupRequestStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=Pending Approved Declined"`
}

// NormalizePages drops duplicates; granting home also grants dashboard.
func NormalizePages(pages []string) []string {
	out := make([]string, 0, len(pages)+1)
	for _, p := range pages {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	if slices.Contains(out, PageHome) && !slices.Contains(out, PageDashboard) {
		out = append(out, PageDashboard)
	}
	return out
}
