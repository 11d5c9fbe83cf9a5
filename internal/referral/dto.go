package referral

import "time"

// ReferralDTO is the admin create/edit form.
type ReferralDTO struct {
	AffiliateID        string  `json:"affiliate_id" validate:"required,affiliateid"`
	CustomerNumber     string  `json:"customer_number" validate:"required,max=50"`
	OrderNumber        string  `json:"order_number" validate:"required,max=60"`
	OrderTime          string  `json:"order_time" validate:"required"`
	QuantityOfOrder    int     `json:"quantity_of_order" validate:"gte=0"`
	QuantityOfProducts int     `json:"quantity_of_products" validate:"gte=0"`
	InvoiceTotal       float64 `json:"invoice_total"`
	StoreName          string  `json:"store_name" validate:"max=255"`
	AgentName          string  `json:"agent_name" validate:"max=255"`
	BusinessType       string  `json:"business_type" validate:"max=255"`
	ClientCountry      string  `json:"client_country" validate:"max=100"`
	ClientGroup        string  `json:"client_group" validate:"max=255"`
	ClientNiche        string  `json:"client_niche" validate:"max=255"`
}

func (d ReferralDTO) apply(ref *Referral, orderTime time.Time) {
	ref.AffiliateID = d.AffiliateID
	ref.CustomerNumber = d.CustomerNumber
	ref.OrderNumber = d.OrderNumber
	ref.OrderTime = orderTime
	ref.QuantityOfOrder = d.QuantityOfOrder
	ref.QuantityOfProducts = d.QuantityOfProducts
	ref.InvoiceTotal = d.InvoiceTotal
	ref.StoreName = d.StoreName
	ref.AgentName = d.AgentName
	ref.BusinessType = d.BusinessType
	ref.ClientCountry = d.ClientCountry
	ref.ClientGroup = d.ClientGroup
	ref.ClientNiche = d.ClientNiche
	ref.UUID = Key(d.CustomerNumber, d.OrderNumber)
}

// PreviewResponse lists parsed rows and the settings an import would write.
type PreviewResponse struct {
	Rows     []Row `json:"rows"`
	Settings int   `json:"settings"`
}
