// internal/adapters/out/mail/order_mailer.go
package mail

import (
	"context"
	"log"
	"os"
	"strings"
)

const (
	envSendGridAPIKey = "SENDGRID_API_KEY"
	envSendGridFrom   = "SENDGRID_FROM" // e.g. no-reply@essentia.example
	envMailFromName   = "MAIL_FROM_NAME"
)

// OrderMailer implements usecase.Mailer on top of an EmailClient with a
// fixed sender address.
type OrderMailer struct {
	client      EmailClient
	fromAddress string
}

func NewOrderMailer(client EmailClient, fromAddress string) *OrderMailer {
	return &OrderMailer{
		client:      client,
		fromAddress: strings.TrimSpace(fromAddress),
	}
}

func (m *OrderMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.client.Send(ctx, m.fromAddress, strings.TrimSpace(to), subject, body)
}

// NewOrderMailerWithSendGrid reads the SendGrid settings from env.
//
// - SENDGRID_API_KEY : SendGrid API key
// - SENDGRID_FROM    : sender address
// - MAIL_FROM_NAME   : display name (default "Essentia")
func NewOrderMailerWithSendGrid() *OrderMailer {
	apiKey := os.Getenv(envSendGridAPIKey)
	fromAddr := os.Getenv(envSendGridFrom)
	fromName := os.Getenv(envMailFromName)

	if apiKey == "" {
		log.Printf("[mail] WARN: SENDGRID_API_KEY is empty. OrderMailer will fail to send mail.")
	}
	if fromAddr == "" {
		log.Printf("[mail] WARN: SENDGRID_FROM is empty. OrderMailer will fail to send mail.")
	}
	if fromName == "" {
		fromName = "Essentia"
	}

	client := NewSendGridClient(apiKey, fromName)
	mailer := NewOrderMailer(client, fromAddr)

	log.Printf("[mail] OrderMailer initialized. from=%s name=%s", fromAddr, fromName)
	return mailer
}
