// internal/adapters/in/http/store/webhook/payment_handler.go
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	uc "essentia/internal/application/usecase"
	orderdom "essentia/internal/domain/order"
)

// PaymentWebhookHandler receives the gateway's async callback.
//
// Signature: X-Payment-Signature carries hex HMAC-SHA256 of the raw body.
// When secret is empty (local dev), verification is skipped with a WARN.
//
// The handler answers 204 on success so the gateway stops retrying; a 5xx
// means "retry later" (the status write inside the usecase has its own
// retry, so a 5xx here is reserved for real persistence trouble).
type PaymentWebhookHandler struct {
	flow   *uc.OrderFlowUsecase
	secret string
}

func NewPaymentWebhookHandler(flow *uc.OrderFlowUsecase, secret string) http.Handler {
	return &PaymentWebhookHandler{flow: flow, secret: strings.TrimSpace(secret)}
}

// PaymentWebhookInput mirrors the gateway's (simplified) event payload.
type PaymentWebhookInput struct {
	Event     string `json:"event"` // "payment.succeeded" | "payment.dismissed"
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	AmountMin int64  `json:"amountMin"`
	Currency  string `json:"currency"`
}

func (h *PaymentWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.flow == nil {
		writeJSONError(w, http.StatusInternalServerError, "order flow is not configured")
		return
	}

	const maxBody = 1 << 20 // 1MB
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	_ = r.Body.Close()

	if h.secret == "" {
		log.Printf("[store/webhook/payment] WARN: signature verification disabled (no secret)")
	} else if !h.verify(body, r.Header.Get("X-Payment-Signature")) {
		log.Printf("[store/webhook/payment] signature mismatch -> 401")
		writeJSONError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var in PaymentWebhookInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	orderID := strings.TrimSpace(in.OrderID)
	if orderID == "" {
		writeJSONError(w, http.StatusBadRequest, "orderId is required")
		return
	}

	switch strings.TrimSpace(in.Event) {
	case "payment.succeeded":
		err = h.flow.HandlePaymentSuccess(r.Context(), uc.PaymentSuccessInput{
			OrderID:   orderID,
			PaymentID: strings.TrimSpace(in.PaymentID),
			AmountMin: in.AmountMin,
			Currency:  strings.TrimSpace(in.Currency),
		})
	case "payment.dismissed":
		err = h.flow.HandlePaymentDismissed(r.Context(), orderID)
	default:
		writeJSONError(w, http.StatusBadRequest, "unknown event")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, orderdom.ErrNotFound):
			writeJSONError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, uc.ErrOrderFlowInvalidArgument):
			writeJSONError(w, http.StatusBadRequest, "invalid event payload")
		case errors.Is(err, orderdom.ErrTerminalStatus):
			// Conflicting replay (e.g. paid arriving after cancelled).
			// Acknowledge so the gateway stops retrying; the mismatch is
			// already logged upstream.
			log.Printf("[store/webhook/payment] terminal status conflict orderId=%s event=%s", orderID, in.Event)
			w.WriteHeader(http.StatusNoContent)
		default:
			log.Printf("[store/webhook/payment] handling failed orderId=%s event=%s err=%v", orderID, in.Event, err)
			writeJSONError(w, http.StatusInternalServerError, "failed to process event")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PaymentWebhookHandler) verify(body []byte, sigHeader string) bool {
	sig := strings.TrimSpace(sigHeader)
	if sig == "" {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
