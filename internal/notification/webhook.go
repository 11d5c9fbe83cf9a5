package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Signup is the payload sent to the admin when someone signs up.
type Signup struct {
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	AffiliateID string `json:"affiliateId"`
}

// Email is handed to the mail relay as-is.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Notifier posts JSON to configured webhooks. Failures are logged and
// never returned to the caller.
type Notifier struct {
	client   *http.Client
	adminURL string
	emailURL string
	log      zerolog.Logger
}

func NewNotifier(adminURL, emailURL string, timeout time.Duration, log zerolog.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		client:   &http.Client{Timeout: timeout},
		adminURL: adminURL,
		emailURL: emailURL,
		log:      log.With().Str("component", "notifier").Logger(),
	}
}

// NotifyNewSignup tells the admin webhook about a new account.
func (n *Notifier) NotifyNewSignup(ctx context.Context, s Signup) {
	if n.adminURL == "" {
		return
	}
	if err := n.post(ctx, n.adminURL, s); err != nil {
		n.log.Warn().Err(err).Str("email", s.Email).Msg("signup webhook failed")
	}
}

// SendEmail relays a message through the e-mail webhook.
func (n *Notifier) SendEmail(ctx context.Context, e Email) {
	if n.emailURL == "" {
		n.log.Debug().Str("to", e.To).Str("subject", e.Subject).Msg("email webhook not configured")
		return
	}
	if err := n.post(ctx, n.emailURL, e); err != nil {
		n.log.Warn().Err(err).Str("to", e.To).Msg("email webhook failed")
	}
}

func (n *Notifier) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
