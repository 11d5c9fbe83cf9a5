package payout

import (
	"strings"

	"github.com/commercive/dashboard-api/internal/utils"
)

const (
	MethodPayPal = "paypal"
	MethodZelle  = "zelle"
	MethodWise   = "wise"
)

// NormalizeDetails checks that method carries the details it needs and
// returns them in stored form together with the payee address.
// Both the form keys (paypal_email, wise_email) and the stored key (email)
// are accepted.
func NormalizeDetails(method string, in map[string]string) (map[string]string, string, error) {
	get := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(in[k]); v != "" {
				return v
			}
		}
		return ""
	}
	switch strings.ToLower(method) {
	case MethodPayPal:
		email := get("paypal_email", "email")
		if email == "" {
			return nil, "", utils.NewValidationError("payment_details", "Please enter your PayPal email")
		}
		return map[string]string{"email": email}, email, nil
	case MethodZelle:
		email, phone := get("zelle_email"), get("zelle_phone")
		if email == "" && phone == "" {
			return nil, "", utils.NewValidationError("payment_details", "Please enter your Zelle email or phone")
		}
		addr := email
		if addr == "" {
			addr = phone
		}
		return map[string]string{"zelle_email": email, "zelle_phone": phone}, addr, nil
	case MethodWise:
		email := get("wise_email", "email")
		if email == "" {
			return nil, "", utils.NewValidationError("payment_details", "Please enter your Wise email")
		}
		return map[string]string{"email": email, "account_type": "personal"}, email, nil
	case "":
		return nil, "", utils.NewValidationError("payment_method", "Please set up your payment preferences first")
	}
	return nil, "", utils.NewValidationError("payment_method", "must be one of paypal zelle wise")
}
