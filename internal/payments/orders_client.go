package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/nutrition-consult/pkg/logging"
)

var razorpayTracer = otel.Tracer("nutrition.internal.payments.razorpay")

// OrderCreator issues a gateway order for an amount in whole rupees.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amount int, receipt string) (*Order, error)
}

// RazorpayOrdersClient creates orders through the Razorpay Orders API using
// the merchant's key id and secret.
type RazorpayOrdersClient struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewRazorpayOrdersClient creates a client against the production API.
func NewRazorpayOrdersClient(keyID, keySecret string, logger *logging.Logger) *RazorpayOrdersClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &RazorpayOrdersClient{
		keyID:      keyID,
		keySecret:  keySecret,
		baseURL:    "https://api.razorpay.com",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL overrides the Razorpay API base URL (for testing).
func (c *RazorpayOrdersClient) WithBaseURL(baseURL string) *RazorpayOrdersClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder implements OrderCreator.
func (c *RazorpayOrdersClient) CreateOrder(ctx context.Context, amount int, receipt string) (*Order, error) {
	ctx, span := razorpayTracer.Start(ctx, "razorpay.create_order")
	defer span.End()
	span.SetAttributes(
		attribute.Int("nutrition.amount_rupees", amount),
		attribute.String("nutrition.receipt", receipt),
	)

	if c.keyID == "" || c.keySecret == "" {
		return nil, fmt.Errorf("%w: razorpay credentials missing", ErrOrderCreation)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrOrderCreation, amount)
	}

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   toPaise(amount),
		Currency: CurrencyINR,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("payments: razorpay encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payments: razorpay request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: razorpay http: %v", ErrOrderCreation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr razorpayErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			c.logger.Error("razorpay order rejected", "status", resp.StatusCode, "code", apiErr.Error.Code, "description", apiErr.Error.Description)
			return nil, fmt.Errorf("%w: razorpay status %d: %s", ErrOrderCreation, resp.StatusCode, apiErr.Error.Description)
		}
		c.logger.Error("razorpay order rejected", "status", resp.StatusCode, "body", string(raw))
		return nil, fmt.Errorf("%w: razorpay status %d", ErrOrderCreation, resp.StatusCode)
	}

	var parsed razorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: razorpay decode: %v", ErrOrderCreation, err)
	}
	if parsed.ID == "" {
		return nil, fmt.Errorf("%w: razorpay response missing order id", ErrOrderCreation)
	}

	c.logger.Info("razorpay order created", "order_id", parsed.ID, "amount", parsed.Amount, "receipt", receipt)
	return &Order{
		ID:       parsed.ID,
		Amount:   parsed.Amount,
		Currency: parsed.Currency,
	}, nil
}

func toPaise(rupees int) int64 {
	return int64(rupees) * 100
}
