// internal/adapters/out/mail/sendgrid_client.go
package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailClient abstracts the concrete mail provider (SendGrid / SMTP / SES).
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// SendGridClient implements EmailClient.
type SendGridClient struct {
	apiKey   string
	fromName string
}

func NewSendGridClient(apiKey, fromName string) *SendGridClient {
	return &SendGridClient{apiKey: apiKey, fromName: fromName}
}

// Send sends a plain-text email (with a minimal HTML mirror) via SendGrid.
func (c *SendGridClient) Send(ctx context.Context, from, to, subject, body string) error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if from == "" {
		return fmt.Errorf("from address is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	fromEmail := sgmail.NewEmail(c.fromName, from)
	toEmail := sgmail.NewEmail("", to)
	htmlContent := fmt.Sprintf("<pre>%s</pre>", body)

	message := sgmail.NewSingleEmail(fromEmail, subject, toEmail, body, htmlContent)

	client := sendgrid.NewSendClient(c.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		log.Printf("[sendgrid] error status=%d, body=%s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	log.Printf("[sendgrid] mail sent: status=%d to=%s subject=%s", response.StatusCode, to, subject)
	return nil
}
