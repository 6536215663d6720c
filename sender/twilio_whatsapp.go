package sender

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const twilioAPIURL = "https://api.twilio.com/2010-04-01"

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	// APIURL overrides the Twilio endpoint; empty means production.
	APIURL string
}

// TwilioWhatsAppSender sends WhatsApp messages through Twilio's Messages API.
type TwilioWhatsAppSender struct {
	cfg    TwilioConfig
	client *resty.Client
}

func NewTwilioWhatsAppSender(cfg TwilioConfig) *TwilioWhatsAppSender {
	if cfg.APIURL == "" {
		cfg.APIURL = twilioAPIURL
	}
	return &TwilioWhatsAppSender{
		cfg:    cfg,
		client: resty.New().SetTimeout(15 * time.Second),
	}
}

func whatsappAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:+" + DigitsOnly(number)
}

func (t *TwilioWhatsAppSender) SendMessage(ctx context.Context, to, text string) (SendResult, error) {
	if t.cfg.AccountSID == "" || t.cfg.AuthToken == "" || t.cfg.FromNumber == "" {
		return SendResult{}, ErrNotConfigured
	}
	if DigitsOnly(to) == "" {
		return SendResult{}, fmt.Errorf("twilio send failed: invalid phone number %q", to)
	}

	var out struct {
		SID string `json:"sid"`
	}
	resp, err := t.client.R().
		SetContext(ctx).
		SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken).
		SetFormData(map[string]string{
			"To":   whatsappAddress(to),
			"From": whatsappAddress(t.cfg.FromNumber),
			"Body": text,
		}).
		SetResult(&out).
		Post(fmt.Sprintf("%s/Accounts/%s/Messages.json", t.cfg.APIURL, t.cfg.AccountSID))
	if err != nil {
		return SendResult{}, fmt.Errorf("twilio request failed: %w", err)
	}
	if resp.IsError() {
		return SendResult{}, fmt.Errorf("twilio error %d: %s", resp.StatusCode(), resp.String())
	}

	return SendResult{MessageID: out.SID, SentAt: time.Now()}, nil
}
