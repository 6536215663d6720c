package sender

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotConfigured is returned by a sender whose credentials are missing.
// Callers treat it as a skip rather than a failure.
var ErrNotConfigured = errors.New("sender not configured")

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) (SendResult, error)
}

// ChatSender delivers a plain-text WhatsApp message.
type ChatSender interface {
	SendMessage(ctx context.Context, to, text string) (SendResult, error)
}

// DigitsOnly strips everything but 0-9 from a phone number.
func DigitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
