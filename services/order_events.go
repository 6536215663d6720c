package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Rohit1034/HrudaySparshi/models"
	aws_pkg "github.com/Rohit1034/HrudaySparshi/pkg/aws"

	"go.uber.org/zap"
)

// OrderEvents publishes order lifecycle events to SNS. Publishing is
// best-effort: it runs in the background and failures are only logged.
// A nil *OrderEvents is a no-op.
type OrderEvents struct {
	publisher aws_pkg.SNSPublisher
	topicArn  string
	logger    *zap.Logger
	timeout   time.Duration
}

func NewOrderEvents(publisher aws_pkg.SNSPublisher, topicArn string, log *zap.Logger) *OrderEvents {
	if publisher == nil || topicArn == "" {
		return nil
	}
	return &OrderEvents{
		publisher: publisher,
		topicArn:  topicArn,
		logger:    log,
		timeout:   5 * time.Second,
	}
}

func (e *OrderEvents) Publish(ctx context.Context, eventType string, order *models.Order) {
	if e == nil {
		return
	}

	event := models.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID.String(),
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  order.UpdatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.Warn("failed to marshal order event", zap.String("order_id", event.OrderID), zap.Error(err))
		return
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()
		if err := e.publisher.Publish(bgCtx, e.topicArn, eventType, payload); err != nil {
			e.logger.Warn("SNS publish failed",
				zap.String("event_type", eventType),
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
			return
		}
		e.logger.Debug("SNS published", zap.String("event_type", eventType), zap.String("topic", e.topicArn))
	}()
}
