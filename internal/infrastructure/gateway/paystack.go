package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/pkg/logger"
)

// ErrGatewayRejected wraps 4xx replies and 2xx replies with status=false.
// Transport failures, 5xx and undecodable replies are not rejections.
var ErrGatewayRejected = domainerrors.ErrGatewayRejected

var hundred = decimal.NewFromInt(100)

// PaystackClient talks to the Paystack REST API for collections and payouts
type PaystackClient struct {
	baseURL     string
	secretKey   string
	callbackURL string
	httpClient  *http.Client
}

func NewPaystackClient(baseURL, secretKey, callbackURL string, timeout time.Duration) *PaystackClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PaystackClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		secretKey:   secretKey,
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize opens a checkout session and returns the authorization URL
func (c *PaystackClient) Initialize(ctx context.Context, amount decimal.Decimal, reference, email string) (string, error) {
	body := map[string]interface{}{
		"email":     email,
		"amount":    toKobo(amount),
		"reference": reference,
		"currency":  "NGN",
	}
	if c.callbackURL != "" {
		body["callback_url"] = c.callbackURL
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
	}
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return "", err
	}
	return data.AuthorizationURL, nil
}

// Verify fetches the gateway's record of a reference
func (c *PaystackClient) Verify(ctx context.Context, reference string) (*entities.GatewayVerification, error) {
	var data struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
	}
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &data); err != nil {
		return nil, err
	}
	if data.Reference == "" {
		data.Reference = reference
	}
	return &entities.GatewayVerification{
		Reference:  data.Reference,
		Status:     entities.GatewayStatus(strings.ToLower(data.Status)),
		AmountPaid: fromKobo(data.Amount),
	}, nil
}

// CreateRecipient registers a NUBAN account and returns its recipient code
func (c *PaystackClient) CreateRecipient(ctx context.Context, name, accountNumber, bankCode string) (string, error) {
	var data struct {
		RecipientCode string `json:"recipient_code"`
	}
	err := c.do(ctx, http.MethodPost, "/transferrecipient", map[string]interface{}{
		"type":           "nuban",
		"name":           name,
		"account_number": accountNumber,
		"bank_code":      bankCode,
		"currency":       "NGN",
	}, &data)
	if err != nil {
		return "", err
	}
	if data.RecipientCode == "" {
		return "", fmt.Errorf("%w: empty recipient code", ErrGatewayRejected)
	}
	return data.RecipientCode, nil
}

// Transfer sends amount from the platform balance to a recipient
func (c *PaystackClient) Transfer(ctx context.Context, recipientCode string, amount decimal.Decimal, reason string) (string, error) {
	var data struct {
		TransferCode string `json:"transfer_code"`
		Reference    string `json:"reference"`
	}
	err := c.do(ctx, http.MethodPost, "/transfer", map[string]interface{}{
		"source":    "balance",
		"reason":    reason,
		"amount":    toKobo(amount),
		"recipient": recipientCode,
	}, &data)
	if err != nil {
		return "", err
	}
	if data.TransferCode != "" {
		return data.TransferCode, nil
	}
	return data.Reference, nil
}

func (c *PaystackClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paystack %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("paystack %s: server error %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("paystack %s: decode response: %w", path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		logger.Warn(ctx, "Paystack request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", env.Message),
		)
		return fmt.Errorf("%w: %s", ErrGatewayRejected, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("paystack %s: decode data: %w", path, err)
		}
	}
	return nil
}

func toKobo(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func fromKobo(kobo int64) decimal.Decimal {
	return decimal.New(kobo, -2)
}
