package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type WhatsAppCloudConfig struct {
	APIURL        string
	Token         string
	PhoneNumberID string
}

// WhatsAppCloudSender posts text messages through the WhatsApp Business
// Cloud API.
type WhatsAppCloudSender struct {
	cfg    WhatsAppCloudConfig
	client *resty.Client
}

func NewWhatsAppCloudSender(cfg WhatsAppCloudConfig) *WhatsAppCloudSender {
	return &WhatsAppCloudSender{
		cfg:    cfg,
		client: resty.New().SetTimeout(15 * time.Second),
	}
}

type cloudText struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type cloudMessage struct {
	MessagingProduct string    `json:"messaging_product"`
	RecipientType    string    `json:"recipient_type"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Text             cloudText `json:"text"`
}

type cloudResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (w *WhatsAppCloudSender) SendMessage(ctx context.Context, to, text string) (SendResult, error) {
	if w.cfg.Token == "" || w.cfg.PhoneNumberID == "" {
		return SendResult{}, ErrNotConfigured
	}
	digits := DigitsOnly(to)
	if digits == "" {
		return SendResult{}, fmt.Errorf("whatsapp send failed: invalid phone number %q", to)
	}

	var out cloudResponse
	resp, err := w.client.R().
		SetContext(ctx).
		SetAuthToken(w.cfg.Token).
		SetHeader("Content-Type", "application/json").
		SetBody(cloudMessage{
			MessagingProduct: "whatsapp",
			RecipientType:    "individual",
			To:               digits,
			Type:             "text",
			Text:             cloudText{PreviewURL: true, Body: text},
		}).
		SetResult(&out).
		Post(fmt.Sprintf("%s/%s/messages", w.cfg.APIURL, w.cfg.PhoneNumberID))
	if err != nil {
		return SendResult{}, fmt.Errorf("whatsapp request failed: %w", err)
	}
	if resp.IsError() {
		return SendResult{}, fmt.Errorf("whatsapp error %d: %s", resp.StatusCode(), resp.String())
	}

	result := SendResult{SentAt: time.Now()}
	if len(out.Messages) > 0 {
		result.MessageID = out.Messages[0].ID
	}
	return result, nil
}
