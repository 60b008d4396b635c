package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"campus-market.backend/pkg/logger"
)

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoEmail struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// BrevoNotifier sends transactional email through the Brevo SMTP API
type BrevoNotifier struct {
	apiURL     string
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
}

func NewBrevoNotifier(apiURL, apiKey, fromEmail, fromName string, timeout time.Duration) *BrevoNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BrevoNotifier{
		apiURL:     apiURL,
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		fromName:   fromName,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send returns false on any failure; callers treat delivery as best effort.
func (n *BrevoNotifier) Send(ctx context.Context, to, subject, body string) bool {
	if to == "" {
		return false
	}

	payload, err := json.Marshal(brevoEmail{
		Sender:      brevoContact{Name: n.fromName, Email: n.fromEmail},
		To:          []brevoContact{{Email: to}},
		Subject:     subject,
		HTMLContent: body,
	})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, bytes.NewReader(payload))
	if err != nil {
		logger.Warn(ctx, "Failed to build email request", zap.Error(err))
		return false
	}
	req.Header.Set("api-key", n.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		logger.Warn(ctx, "Email delivery failed", zap.String("to", to), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		logger.Warn(ctx, "Email provider rejected message",
			zap.String("to", to),
			zap.Int("status", resp.StatusCode),
		)
		return false
	}
	return true
}
