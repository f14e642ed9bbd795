// internal/infra/config/config.go
package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the environment configuration for the store service.
type Config struct {
	Port string

	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	// product media bucket
	GCSBucket string

	// guest cart store
	PostgresDSN string

	// back-office token and gateway callback secret
	AdminAPIToken        string
	PaymentWebhookSecret string

	// optional Secret Manager resource names; when set they override the
	// plain env values at boot
	AdminAPITokenSecretName        string
	PaymentWebhookSecretSecretName string

	// checkout policy
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	GiftWrapFee           decimal.Decimal

	// public base URL of this service (dev payment trigger)
	PublicBaseURL string
}

// Load reads .env (best-effort, local dev only) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] .env loaded")
	}

	defaultProject := getenvDefault("GCP_PROJECT_ID", "essentia-store-dev")

	cfg := &Config{
		Port:                     getenvDefault("PORT", "8080"),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),
		GCSBucket:                os.Getenv("GCS_BUCKET"),
		PostgresDSN:              os.Getenv("POSTGRES_DSN"),
		AdminAPIToken:            os.Getenv("ADMIN_API_TOKEN"),
		PaymentWebhookSecret:     os.Getenv("PAYMENT_WEBHOOK_SECRET"),

		AdminAPITokenSecretName:        os.Getenv("ADMIN_API_TOKEN_SECRET_NAME"),
		PaymentWebhookSecretSecretName: os.Getenv("PAYMENT_WEBHOOK_SECRET_NAME"),

		FreeShippingThreshold: getenvDecimal("FREE_SHIPPING_THRESHOLD", "1000"),
		ShippingFee:           getenvDecimal("SHIPPING_FEE", "100"),
		GiftWrapFee:           getenvDecimal("GIFT_WRAP_FEE", "100"),

		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),
	}

	return cfg
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvDecimal falls back to def on blank or junk so a bad deploy never
// turns into a zero shipping fee by accident.
func getenvDecimal(key, def string) decimal.Decimal {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		raw = def
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		log.Printf("[config] WARN: %s=%q is not a valid amount, using default %s", key, raw, def)
		d, _ = decimal.NewFromString(def)
	}
	return d
}
