package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// CertificationEmail - данные письма о выданном сертификате
type CertificationEmail struct {
	ToEmail       string
	RecipientName string
	Title         string
	LevelDisplay  string
	TotalScore    float64
	CertificateID string
	VerifyURL     string
}

// EmailService sends transactional emails.
type EmailService interface {
	SendCertificationIssued(ctx context.Context, msg CertificationEmail) error
}

// NoopEmailService is used when email delivery is disabled.
type NoopEmailService struct{}

func (s *NoopEmailService) SendCertificationIssued(ctx context.Context, msg CertificationEmail) error {
	log.Printf("[EmailService] noop certification email to=%s certificate=%s", msg.ToEmail, msg.CertificateID)
	return nil
}

// resendSender is the subset of the Resend emails API we call.
type resendSender interface {
	SendWithOptions(ctx context.Context, params *resend.SendEmailRequest, options *resend.SendEmailOptions) (*resend.SendEmailResponse, error)
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	emails resendSender
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	client := resend.NewClient(apiKey)
	return &ResendEmailService{
		from:   from,
		emails: client.Emails,
	}, nil
}

func (s *ResendEmailService) SendCertificationIssued(ctx context.Context, msg CertificationEmail) error {
	if msg.ToEmail == "" || msg.CertificateID == "" {
		return fmt.Errorf("recipient and certificate id are required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.ToEmail},
		Subject: fmt.Sprintf("Your certification: %s", msg.Title),
		Text: fmt.Sprintf("Hi %s,\n\nYou have been certified in %s at level %s (score %.2f).\nCertificate ID: %s\nVerify: %s\n",
			msg.RecipientName, msg.Title, msg.LevelDisplay, msg.TotalScore, msg.CertificateID, msg.VerifyURL),
		Html: fmt.Sprintf("<p>Hi %s,</p><p>You have been certified in <strong>%s</strong> at level <strong>%s</strong> (score %.2f).</p><p>Certificate ID: <code>%s</code></p><p><a href=\"%s\">Verify certificate</a></p>",
			html.EscapeString(msg.RecipientName), html.EscapeString(msg.Title), msg.LevelDisplay, msg.TotalScore, msg.CertificateID, html.EscapeString(msg.VerifyURL)),
	}

	// certificate_id уникален, повтор письма Resend отбросит
	options := &resend.SendEmailOptions{IdempotencyKey: "certification-issued/" + msg.CertificateID}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
