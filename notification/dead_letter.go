package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// MessageSender is satisfied by *aws.SQSProducer.
type MessageSender interface {
	SendMessage(ctx context.Context, body string, attributes map[string]string) error
}

// SQSDeadLetter parks failed jobs on a queue for later inspection or replay.
type SQSDeadLetter struct {
	producer MessageSender
}

func NewSQSDeadLetter(producer MessageSender) *SQSDeadLetter {
	return &SQSDeadLetter{producer: producer}
}

type deadLetterMessage struct {
	JobID     string    `json:"jobId"`
	Type      string    `json:"type"`
	Channel   string    `json:"channel"`
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	Error     string    `json:"error"`
	FailedAt  time.Time `json:"failedAt"`
}

func (s *SQSDeadLetter) Publish(ctx context.Context, job Job, lastErr error) error {
	msg := deadLetterMessage{
		JobID:     job.ID,
		Type:      job.Type,
		Channel:   job.Channel,
		OrderID:   job.OrderID,
		UserID:    job.UserID,
		Recipient: job.Recipient,
		Subject:   job.Subject,
		Body:      job.Body,
		FailedAt:  time.Now().UTC(),
	}
	if lastErr != nil {
		msg.Error = lastErr.Error()
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}
	return s.producer.SendMessage(ctx, string(body), map[string]string{
		"type":    job.Type,
		"channel": job.Channel,
	})
}
