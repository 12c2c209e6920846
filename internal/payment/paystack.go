// Package payment talks to the Paystack card gateway.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Paystack transaction statuses and webhook events.
const (
	StatusSuccess      = "success"
	EventChargeSuccess = "charge.success"
	SignatureHeader    = "x-paystack-signature"
)

// Gateway initialises and verifies card transactions.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (*Initialization, error)
	Verify(ctx context.Context, reference string) (*Verification, error)
}

// InitializeRequest starts a card payment. Amount is in whole naira.
type InitializeRequest struct {
	Email       string
	Amount      int64
	Reference   string
	CallbackURL string
	Metadata    map[string]interface{}
}

// Initialization is the hosted checkout the customer is sent to.
type Initialization struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// Verification is the gateway's view of a transaction.
type Verification struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    int64           `json:"amount"`
	Raw       json.RawMessage `json:"-"`
}

// Successful reports whether the charge went through.
func (v *Verification) Successful() bool {
	return v.Status == StatusSuccess
}

// Options configure the Paystack client.
type Options struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// Client is a Paystack REST client.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Paystack client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.paystack.co"
	}
	return &Client{
		secretKey:  opts.SecretKey,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger.With().Str("component", "paystack").Logger(),
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeBody struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
}

// Initialize creates a transaction. Paystack expects the amount in kobo.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*Initialization, error) {
	if c.secretKey == "" {
		return nil, model.ErrPaymentNotConfigured
	}

	body, err := json.Marshal(initializeBody{
		Email:       req.Email,
		Amount:      req.Amount * 100,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize request: %w", err)
	}

	env, err := c.do(ctx, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		c.logger.Error().Err(err).Str("reference", req.Reference).Msg("paystack initialize request failed")
		return nil, model.ErrPaymentInitFailed
	}
	if !env.Status {
		c.logger.Warn().Str("reference", req.Reference).Str("message", env.Message).Msg("paystack rejected initialize")
		return nil, gatewayError(model.ErrPaymentInitFailed, env.Message)
	}

	var data initializeData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode initialize response: %w", err)
	}
	if data.Reference == "" {
		data.Reference = req.Reference
	}

	return &Initialization{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// Verify fetches the transaction for reference. Amount is converted back to naira.
func (c *Client) Verify(ctx context.Context, reference string) (*Verification, error) {
	if c.secretKey == "" {
		return nil, model.ErrPaymentNotConfigured
	}

	env, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		c.logger.Error().Err(err).Str("reference", reference).Msg("paystack verify request failed")
		return nil, model.ErrPaymentVerifyFailed
	}
	if !env.Status {
		return nil, gatewayError(model.ErrPaymentVerifyFailed, env.Message)
	}

	var data verifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}
	if data.Reference == "" {
		data.Reference = reference
	}

	return &Verification{
		Reference: data.Reference,
		Status:    data.Status,
		Amount:    data.Amount / 100,
		Raw:       env.Data,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call paystack: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode paystack response (status %d): %w", resp.StatusCode, err)
	}
	return &env, nil
}

func gatewayError(base *model.DomainError, message string) *model.DomainError {
	if message == "" {
		return base
	}
	return base.WithMessage(fmt.Sprintf("%s: %s", base.Message, message))
}

// Sign returns the hex HMAC-SHA512 of body, as sent in the signature header.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature in constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// WebhookEvent is the subset of a Paystack webhook the store reacts to.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// ParseWebhook decodes a webhook body.
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook: %w", err)
	}
	return &event, nil
}
