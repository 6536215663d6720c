package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusRequested OrderStatus = "REQUESTED"
	StatusPending   OrderStatus = "PENDING"
	StatusCompleted OrderStatus = "COMPLETED"
)

// PaymentModeOffline is the only payment mode: cash on delivery.
const PaymentModeOffline = "OFFLINE"

var validStatuses = map[OrderStatus]bool{
	StatusRequested: true,
	StatusPending:   true,
	StatusCompleted: true,
}

// ParseOrderStatus accepts the exact upper-case status names.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	return status, validStatuses[status]
}

func (s OrderStatus) Valid() bool {
	return validStatuses[s]
}

// CanTransition reports whether an order may move from -> to. The lifecycle
// is forward only; REQUESTED -> COMPLETED is allowed only with allowSkip.
func CanTransition(from, to OrderStatus, allowSkip bool) bool {
	switch {
	case from == StatusRequested && to == StatusPending:
		return true
	case from == StatusPending && to == StatusCompleted:
		return true
	case from == StatusRequested && to == StatusCompleted:
		return allowSkip
	default:
		return false
	}
}

type Order struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string      `gorm:"index;not null" json:"userId"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	CustomerPhone   string      `json:"customerPhone"`
	DeliveryAddress string      `json:"deliveryAddress"`
	Items           []OrderItem `gorm:"type:jsonb;serializer:json;not null" json:"items"`
	TotalAmount     float64     `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	Status          OrderStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	PaymentMode     string      `gorm:"type:varchar(16);not null" json:"paymentMode"`
	CreatedAt       time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// ItemsTotal sums price x quantity over items, rounded to paise.
func ItemsTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return RoundCurrency(total)
}

func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

// OrderStatusSummary is one row of the per-status aggregate used by the dashboard.
type OrderStatusSummary struct {
	Status  OrderStatus
	Count   int64
	Revenue float64
}

type DashboardStats struct {
	TotalOrders     int64   `json:"totalOrders"`
	RequestedOrders int64   `json:"requestedOrders"`
	PendingOrders   int64   `json:"pendingOrders"`
	CompletedOrders int64   `json:"completedOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalProducts   int64   `json:"totalProducts"`
}

// OrderEvent is published to the order events topic.
type OrderEvent struct {
	Type        string      `json:"type"`
	OrderID     string      `json:"orderId"`
	UserID      string      `json:"userId"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"totalAmount"`
	OccurredAt  time.Time   `json:"occurredAt"`
}

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)
