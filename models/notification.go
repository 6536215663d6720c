package models

import "time"

const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"

	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"

	TypeOrderConfirmation = "order_confirmation"
	TypeAdminNewOrder     = "admin_new_order"
	TypeOrderStatusUpdate = "order_status_update"
)

type NotificationLog struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   string    `json:"orderId" gorm:"index"`
	UserID    string    `json:"userId" gorm:"index"`
	Recipient string    `json:"recipient"`
	Type      string    `json:"type"`
	Channel   string    `json:"channel"`
	Status    string    `json:"status" gorm:"index"`
	MessageID string    `json:"messageId,omitempty"`
	Error     string    `json:"error,omitempty"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

type NotificationFilter struct {
	OrderID  string
	Type     string
	Status   string
	Channel  string
	Page     int
	PageSize int
}
