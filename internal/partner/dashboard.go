package partner

import (
	"time"

	"github.com/commercive/dashboard-api/internal/lead"
	"github.com/commercive/dashboard-api/internal/referral"
	"github.com/shopspring/decimal"
)

// Stats are the referral figures shown on the partner dashboard.
type Stats struct {
	TotalEarnings  float64 `json:"total_earnings"`
	ThisMonth      float64 `json:"this_month"`
	TotalReferrals int     `json:"total_referrals"`
	TotalOrders    int     `json:"total_orders"`
	AvgOrderValue  float64 `json:"avg_order_value"`
	TotalLeads     int64   `json:"total_leads"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Compute derives the dashboard figures. TotalReferrals counts distinct
// customers, falling back to the order count when no row names one.
// ThisMonth covers orders since the first of now's month (UTC).
func Compute(views []referral.View, leads int64, now time.Time) Stats {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	total, month, invoice := decimal.Zero, decimal.Zero, decimal.Zero
	customers := map[string]struct{}{}
	for _, v := range views {
		c := decimal.NewFromFloat(v.TotalCommission)
		total = total.Add(c)
		if !v.OrderTime.Before(monthStart) {
			month = month.Add(c)
		}
		invoice = invoice.Add(decimal.NewFromFloat(v.InvoiceTotal))
		if v.CustomerNumber != "" {
			customers[v.CustomerNumber] = struct{}{}
		}
	}

	s := Stats{
		TotalEarnings:  total.InexactFloat64(),
		ThisMonth:      month.InexactFloat64(),
		TotalReferrals: len(customers),
		TotalOrders:    len(views),
		TotalLeads:     leads,
		ConversionRate: lead.ConversionRate(int64(len(views)), leads),
	}
	if s.TotalReferrals == 0 {
		s.TotalReferrals = len(views)
	}
	if len(views) > 0 {
		s.AvgOrderValue = invoice.Div(decimal.NewFromInt(int64(len(views)))).Round(2).InexactFloat64()
	}
	return s
}
