package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "github.com/anjiri1684/teacheron/configs"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// Mailer delivers a single transactional e-mail.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, htmlContent string) error
}

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	Endpoint    string

	client *http.Client
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewMailer returns a Brevo client, or a mailer that only logs when Brevo
// is not configured.
func NewMailer(cfg *config.Config, logger *slog.Logger) Mailer {
	if cfg.BrevoAPIKey == "" || cfg.EmailSender == "" {
		logger.Warn("email service not configured, e-mails will be logged only")
		return logMailer{logger: logger}
	}
	return &BrevoService{
		APIKey:      cfg.BrevoAPIKey,
		SenderEmail: cfg.EmailSender,
		SenderName:  cfg.EmailSenderName,
		Endpoint:    brevoEndpoint,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *BrevoService) Send(ctx context.Context, toEmail, toName, subject, htmlContent string) error {
	at := strings.Index(toEmail, "@")
	if at <= 0 {
		return fmt.Errorf("invalid recipient email: %q", toEmail)
	}
	if toName == "" {
		toName = toEmail[:at]
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": toName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal brevo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build brevo request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	client := s.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send brevo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("brevo returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}

type logMailer struct {
	logger *slog.Logger
}

func (m logMailer) Send(ctx context.Context, toEmail, _, subject, _ string) error {
	m.logger.InfoContext(ctx, "email skipped", "to", toEmail, "subject", subject)
	return nil
}
