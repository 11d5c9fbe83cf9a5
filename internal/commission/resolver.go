package commission

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/shopspring/decimal"
)

var ErrUnknownMethod = utils.NewError(http.StatusBadRequest, "Unknown commission method")

// Compute returns the commission an order earns. Per-order is a flat
// amount regardless of the invoice; percentage is rate * invoice. Negative
// invoices are passed through unchanged.
func Compute(method Method, rate, invoiceTotal float64) float64 {
	switch method {
	case MethodPerOrder:
		return rate
	case MethodPercentage:
		v, _ := decimal.NewFromFloat(rate).Mul(decimal.NewFromFloat(invoiceTotal)).Float64()
		return v
	default:
		return 0
	}
}

// Resolve picks the setting for a customer: its own row first, then the
// affiliate default, else None with a zero rate.
func Resolve(settings map[string]Setting, affiliateID, customerID string) Setting {
	if s, ok := settings[UID(affiliateID, customerID)]; ok {
		return s
	}
	if s, ok := settings[UID(affiliateID, DefaultCustomer)]; ok {
		return s
	}
	return NewSetting(affiliateID, customerID, MethodNone, 0)
}

// Index keys settings by UID for Resolve.
func Index(settings []Setting) map[string]Setting {
	out := make(map[string]Setting, len(settings))
	for _, s := range settings {
		out[s.UID] = s
	}
	return out
}

// ParseMethod accepts the template names and the numeric codes.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "0":
		return MethodNone, nil
	case "per_order", "per-order", "1":
		return MethodPerOrder, nil
	case "percentage", "2":
		return MethodPercentage, nil
	}
	return MethodNone, fmt.Errorf("%q: %w", s, ErrUnknownMethod)
}

func (m Method) String() string {
	switch m {
	case MethodPerOrder:
		return "per_order"
	case MethodPercentage:
		return "percentage"
	default:
		return "none"
	}
}

// Valid reports whether m is one of the three known methods.
func (m Method) Valid() bool {
	return m >= MethodNone && m <= MethodPercentage
}

// FormatRate renders a rate the way the admin tables show it.
func FormatRate(method Method, rate float64) string {
	switch method {
	case MethodPerOrder:
		return "$" + decimal.NewFromFloat(rate).StringFixed(2)
	case MethodPercentage:
		return decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(100)).String() + "%"
	default:
		return "-"
	}
}
