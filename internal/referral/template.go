package referral

import (
	"encoding/csv"
	"io"
	"strings"
)

var templateExample = []string{
	"2024-01-15", "per_order", "CUST001", "Example Store", "1.00", "AFF-12345678",
	"ORD-001", "1", "5", "150.00", "1.00",
}

var templateInstructions = []string{
	"# Instructions:",
	"# time: order date as YYYY-MM-DD, an ISO timestamp, or a spreadsheet date",
	"# affiliate_commission: per_order (flat amount per order) or percentage (share of invoice_total)",
	"# commission_rate: Amount ($) for per_order, or decimal (0.01 = 1%) for percentage",
	"# affiliate_id: the partner ID, AFF- followed by 8 letters or digits",
	"# customer_number + order_number identify an order; uploading the same pair again overwrites it",
	"# total_commission is informational; it is recalculated from the method and rate",
	"# Delete these instruction lines and the example row before uploading",
}

// WriteTemplate writes the import template: header, one example row and
// # instruction lines that the importer skips.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	if err := cw.Write(templateExample); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n"+strings.Join(templateInstructions, "\n")+"\n")
	return err
}
