// internal/adapters/out/http/payment_webhook_client.go
package httpout

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// PaymentWebhookClient drives the store's own payment webhook endpoint.
// Used by the dev/sandbox checkout flow, where no real gateway exists, to
// simulate the async success / dismissed callback after order creation.
type PaymentWebhookClient struct {
	baseURL string
	secret  string
	client  *http.Client
}

type PaymentWebhookPayload struct {
	Event     string `json:"event"` // "payment.succeeded" | "payment.dismissed"
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId,omitempty"`
	AmountMin int64  `json:"amountMin,omitempty"`
	Currency  string `json:"currency,omitempty"`
}

// baseURL example:
// - Cloud Run: https://xxxxx.asia-northeast1.run.app
// - local: http://localhost:8080
func NewPaymentWebhookClient(baseURL, secret string) *PaymentWebhookClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return &PaymentWebhookClient{
		baseURL: baseURL,
		secret:  strings.TrimSpace(secret),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// TriggerSucceeded posts a payment.succeeded event for the order.
func (c *PaymentWebhookClient) TriggerSucceeded(ctx context.Context, orderID, paymentID string, amountMin int64, currency string) error {
	return c.post(ctx, PaymentWebhookPayload{
		Event:     "payment.succeeded",
		OrderID:   strings.TrimSpace(orderID),
		PaymentID: strings.TrimSpace(paymentID),
		AmountMin: amountMin,
		Currency:  strings.TrimSpace(currency),
	})
}

// TriggerDismissed posts a payment.dismissed event for the order.
func (c *PaymentWebhookClient) TriggerDismissed(ctx context.Context, orderID string) error {
	return c.post(ctx, PaymentWebhookPayload{
		Event:   "payment.dismissed",
		OrderID: strings.TrimSpace(orderID),
	})
}

func (c *PaymentWebhookClient) post(ctx context.Context, payload PaymentWebhookPayload) error {
	if c == nil {
		return fmt.Errorf("payment webhook client is nil")
	}
	if c.baseURL == "" {
		return fmt.Errorf("payment webhook client baseURL is empty")
	}

	url := c.baseURL + "/store/webhooks/payment"

	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("X-Payment-Signature", SignPayload(c.secret, b))
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	return fmt.Errorf("webhook call failed status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
}

// SignPayload computes the hex HMAC-SHA256 the webhook handler verifies.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
