package notification

import (
	"testing"
	"time"

	"github.com/Rohit1034/HrudaySparshi/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *models.Order {
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	return &models.Order{
		ID:              uuid.MustParse("6f1c2a4e-0b7d-4c36-9a51-2f0c9d8e7b10"),
		UserID:          "u-1",
		CustomerName:    "Asha <Patil>",
		CustomerEmail:   "asha@example.com",
		CustomerPhone:   "+91 98765 43210",
		DeliveryAddress: "12 MG Road, Pune",
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Chakli", Quantity: 2, Price: 100},
			{ProductID: "p2", Name: "Shankarpali", Quantity: 1, Price: 50},
		},
		TotalAmount: 250,
		Status:      models.StatusRequested,
		PaymentMode: models.PaymentModeOffline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(BuilderConfig{
		BusinessName: "Hruday Sparshi",
		AdminEmail:   "owner@example.com",
		AdminPhone:   "+91 90000 00000",
	})
	require.NoError(t, err)
	return b
}

func TestOrderPlacedBuildsFourJobs(t *testing.T) {
	b := newTestBuilder(t)
	order := testOrder()

	jobs, err := b.OrderPlaced(order)
	require.NoError(t, err)
	require.Len(t, jobs, 4)

	customerEmail := jobs[0]
	assert.Equal(t, models.ChannelEmail, customerEmail.Channel)
	assert.Equal(t, "asha@example.com", customerEmail.Recipient)
	assert.Equal(t, "Order Confirmation - "+order.ID.String(), customerEmail.Subject)
	assert.Contains(t, customerEmail.Body, "Chakli &times; 2 = ₹200.00")
	assert.Contains(t, customerEmail.Body, "₹250.00")
	assert.Contains(t, customerEmail.Body, "Asha &lt;Patil&gt;")

	customerChat := jobs[1]
	assert.Equal(t, models.ChannelWhatsApp, customerChat.Channel)
	assert.Contains(t, customerChat.Body, "Your order #"+order.ID.String()+" has been received.")
	assert.Contains(t, customerChat.Body, "Hi Asha <Patil>,")

	assert.Equal(t, "owner@example.com", jobs[2].Recipient)
	assert.Equal(t, models.TypeAdminNewOrder, jobs[2].Type)
	assert.Contains(t, jobs[2].Body, "12 MG Road, Pune")
	assert.Equal(t, "+91 90000 00000", jobs[3].Recipient)
	assert.Contains(t, jobs[3].Body, "Amount: ₹250.00")

	for _, j := range jobs {
		assert.Equal(t, order.ID.String(), j.OrderID)
		assert.NotEmpty(t, j.ID)
	}
}

func TestStatusChangedMessages(t *testing.T) {
	b := newTestBuilder(t)
	order := testOrder()
	order.Status = models.StatusPending

	jobs, err := b.StatusChanged(order)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Order Update - "+order.ID.String(), jobs[0].Subject)
	assert.Contains(t, jobs[0].Body, "Your order has been confirmed and is being prepared for delivery.")
	assert.Contains(t, jobs[1].Body, "Status: PENDING")

	order.Status = models.StatusCompleted
	jobs, err = b.StatusChanged(order)
	require.NoError(t, err)
	assert.Contains(t, jobs[0].Body, "We hope you enjoyed our products!")
}
