package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the provider-side transaction record created before the customer
// completes payment.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type Client struct {
	log       *slog.Logger
	httpc     *http.Client
	baseURL   string
	keyID     string
	keySecret string
}

func NewClient(log *slog.Logger, baseURL, keyID, keySecret string) *Client {
	return &Client{
		log:       log,
		httpc:     &http.Client{Timeout: 10 * time.Second},
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
	}
}

var minorUnit = decimal.NewFromInt(100)

// CreateOrder opens a payment intent at the provider. The amount is converted
// to the gateway's minor unit and rounded to an integer; each intent carries a
// fresh receipt token.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (Order, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":   amount.Mul(minorUnit).Round(0).IntPart(),
		"currency": currency,
		"receipt":  uuid.NewString(),
	})
	if err != nil {
		return Order{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return Order{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("gateway create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Order{}, fmt.Errorf("gateway create order: unexpected status %d", resp.StatusCode)
	}

	var out Order
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Order{}, fmt.Errorf("gateway create order: decode: %w", err)
	}
	c.log.Info("gateway order created", "gateway_order_id", out.ID, "amount_minor", out.Amount, "currency", out.Currency)
	return out, nil
}

// VerifySignature checks a payment callback against this client's secret.
func (c *Client) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(c.keySecret, gatewayOrderID, paymentID, signature)
}
