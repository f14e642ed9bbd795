// cmd/paymentsim/main.go
//
// paymentsim fires the async payment callback against a running store, the
// way the sandbox gateway would. Useful for local checkout testing:
//
//	go run ./cmd/paymentsim -order <orderId> -payment pay_test_1
//	go run ./cmd/paymentsim -order <orderId> -event dismissed
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	httpout "essentia/internal/adapters/out/http"
)

func main() {
	_ = godotenv.Load()

	var (
		base     = flag.String("base", envOr("PAYMENT_SIM_BASE_URL", "http://localhost:8080"), "store base URL")
		secret   = flag.String("secret", os.Getenv("PAYMENT_WEBHOOK_SECRET"), "webhook signing secret")
		event    = flag.String("event", "succeeded", "succeeded or dismissed")
		orderID  = flag.String("order", "", "order id (required)")
		payment  = flag.String("payment", "pay_sim_1", "payment reference for succeeded")
		amount   = flag.Int64("amount", 0, "captured amount in minor units")
		currency = flag.String("currency", "usd", "currency code")
	)
	flag.Parse()

	if *orderID == "" {
		log.Fatal("[paymentsim] -order is required")
	}

	client := httpout.NewPaymentWebhookClient(*base, *secret)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	switch *event {
	case "succeeded":
		err = client.TriggerSucceeded(ctx, *orderID, *payment, *amount, *currency)
	case "dismissed":
		err = client.TriggerDismissed(ctx, *orderID)
	default:
		log.Fatalf("[paymentsim] unknown event %q", *event)
	}
	if err != nil {
		log.Fatalf("[paymentsim] callback failed: %v", err)
	}
	log.Printf("[paymentsim] %s delivered order=%s", *event, *orderID)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
