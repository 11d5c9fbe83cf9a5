package database

import (
	"fmt"

	"gorm.io/gorm"
)

// A customer specific row (affiliate:customer) wins over the affiliate's
// default row (affiliate:*). Without either the commission is zero.
const referralViewSQL = `
CREATE VIEW referral_view AS
SELECT
	r.id,
	r.uuid,
	r.affiliate_id,
	r.agent_name,
	r.business_type,
	r.client_country,
	r.client_group,
	r.client_niche,
	r.customer_number,
	r.order_number,
	r.order_time,
	r.quantity_of_order,
	r.quantity_of_products,
	r.invoice_total,
	r.store_name,
	r.created_at,
	a.user_id,
	COALESCE(cs.commission_method, ds.commission_method, 0) AS commission_method,
	COALESCE(cs.commission_rate, ds.commission_rate, 0) AS commission_rate,
	CASE COALESCE(cs.commission_method, ds.commission_method, 0)
		WHEN 1 THEN COALESCE(cs.commission_rate, ds.commission_rate, 0)
		WHEN 2 THEN COALESCE(cs.commission_rate, ds.commission_rate, 0) * r.invoice_total
		ELSE 0
	END AS total_commission
FROM referrals r
LEFT JOIN affiliates a ON a.affiliate_id = r.affiliate_id
LEFT JOIN affiliate_customer_setting cs ON cs.uid = r.affiliate_id || ':' || r.customer_number
LEFT JOIN affiliate_customer_setting ds ON ds.uid = r.affiliate_id || ':*'`

const payoutViewSQL = `
CREATE VIEW payout_view AS
SELECT
	user_id,
	status,
	COALESCE(SUM(amount), 0) AS total_amount,
	COUNT(*) AS total_count
FROM payouts
GROUP BY user_id, status`

const referralSummarySQL = `
CREATE VIEW referral_summary AS
SELECT
	affiliate_id,
	COUNT(*) AS total_orders,
	COUNT(DISTINCT customer_number) AS total_customers,
	COALESCE(SUM(invoice_total), 0) AS total_invoice,
	COALESCE(SUM(total_commission), 0) AS total_commission
FROM referral_view
GROUP BY affiliate_id`

const affiliateSettingViewSQL = `
CREATE VIEW affiliate_setting_view AS
SELECT
	s.uid,
	s.affiliate,
	s.customer_id,
	s.commission_method,
	s.commission_rate,
	a.user_id,
	a.status AS affiliate_status,
	u.email,
	u.first_name,
	u.last_name
FROM affiliate_customer_setting s
LEFT JOIN affiliates a ON a.affiliate_id = s.affiliate
LEFT JOIN "user" u ON u.id = a.user_id`

// views are dropped in reverse order since referral_summary reads referral_view.
var views = []struct {
	name string
	sql  string
}{
	{"referral_view", referralViewSQL},
	{"payout_view", payoutViewSQL},
	{"referral_summary", referralSummarySQL},
	{"affiliate_setting_view", affiliateSettingViewSQL},
}

// CreateViews drops and recreates every read view.
func CreateViews(db *gorm.DB) error {
	for i := len(views) - 1; i >= 0; i-- {
		if err := db.Exec("DROP VIEW IF EXISTS " + views[i].name).Error; err != nil {
			return fmt.Errorf("drop view %s: %w", views[i].name, err)
		}
	}
	for _, v := range views {
		if err := db.Exec(v.sql).Error; err != nil {
			return fmt.Errorf("create view %s: %w", v.name, err)
		}
	}
	return nil
}
