package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	apperrors "github.com/Rohit1034/HrudaySparshi/common/errors"
	"github.com/Rohit1034/HrudaySparshi/config"
	"github.com/Rohit1034/HrudaySparshi/models"
	"github.com/Rohit1034/HrudaySparshi/notification"
	"github.com/Rohit1034/HrudaySparshi/sender"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var customer = models.User{
	ID:          "user-1",
	FullName:    "Asha Patil",
	Email:       "asha@example.com",
	PhoneNumber: "+91 98765 43210",
	Address:     "12 MG Road, Pune",
	Role:        models.RoleCustomer,
}

var customerIdentity = models.Identity{UserID: customer.ID, Email: customer.Email, Role: models.RoleCustomer}

type orderFixture struct {
	svc     *OrderService
	orders  *fakeOrderRepo
	users   *fakeUserRepo
	queue   *fakeQueue
	carts   *fakeClearer
	sns     *fakeSNS
	clock   time.Time
	clockMu sync.Mutex
}

func newOrderFixture(t *testing.T, cfg config.OrderConfig) *orderFixture {
	t.Helper()
	builder, err := notification.NewBuilder(notification.BuilderConfig{
		BusinessName: "Hruday Sparshi",
		AdminEmail:   "admin@example.com",
		AdminPhone:   "+91 90000 00000",
	})
	require.NoError(t, err)

	f := &orderFixture{
		orders: newFakeOrderRepo(),
		users:  newFakeUserRepo(customer),
		queue:  &fakeQueue{},
		carts:  &fakeClearer{},
		sns:    &fakeSNS{},
		clock:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewOrderService(f.orders, f.users, newFakeProductRepo(), cfg, zap.NewNop(),
		WithNotifications(builder, f.queue),
		WithCartClearer(f.carts),
		WithOrderEvents(NewOrderEvents(f.sns, "arn:aws:sns:ap-south-1:000000000000:orders", zap.NewNop())),
	)
	f.svc.now = f.tick
	return f
}

// tick advances the clock a minute per call so creation times are distinct.
func (f *orderFixture) tick() time.Time {
	f.clockMu.Lock()
	defer f.clockMu.Unlock()
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func defaultOrderConfig() config.OrderConfig {
	return config.OrderConfig{TotalEpsilon: 0.01}
}

func cartRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: "p1", Name: "Puran Poli", Quantity: 2, Price: 100},
			{ProductID: "p2", Name: "Chakli", Quantity: 1, Price: 50},
		},
		TotalAmount: 250,
	}
}

func TestCreateOrderEndToEnd(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, customerIdentity, cartRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, 250.0, order.TotalAmount)
	assert.Equal(t, models.StatusRequested, order.Status)
	assert.Equal(t, models.PaymentModeOffline, order.PaymentMode)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, customer.FullName, order.CustomerName)
	assert.Equal(t, customer.Address, order.DeliveryAddress)

	stored, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequested, stored.Status)
	assert.Len(t, stored.Items, 2)

	list, err := f.svc.ListForUser(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, order.ID, list[0].ID)

	jobs := f.queue.all()
	require.Len(t, jobs, 4)
	for _, job := range jobs {
		assert.Equal(t, order.ID.String(), job.OrderID)
	}
	assert.Equal(t, []string{customer.ID}, f.carts.cleared)

	assert.Eventually(t, func() bool { return len(f.sns.published()) == 1 }, time.Second, 5*time.Millisecond)
	ev := f.sns.published()[0]
	assert.Equal(t, models.EventOrderCreated, ev.eventType)
	var payload models.OrderEvent
	require.NoError(t, json.Unmarshal(ev.body, &payload))
	assert.Equal(t, order.ID.String(), payload.OrderID)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, customerIdentity, &CreateOrderRequest{})
	assert.True(t, apperrors.IsCode(err, http.StatusBadRequest))

	req := cartRequest()
	req.TotalAmount = 1
	_, err = f.svc.CreateOrder(ctx, customerIdentity, req)
	assert.True(t, apperrors.IsCode(err, http.StatusBadRequest))

	req = cartRequest()
	req.Items[0].Quantity = 0
	_, err = f.svc.CreateOrder(ctx, customerIdentity, req)
	assert.True(t, apperrors.IsCode(err, http.StatusBadRequest))

	_, err = f.svc.CreateOrder(ctx, models.Identity{UserID: "ghost"}, cartRequest())
	assert.True(t, apperrors.IsCode(err, http.StatusNotFound))

	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.queue.all())
}

func TestCreateOrderFallsBackToTokenEmail(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())
	profile := customer
	profile.ID = "user-2"
	profile.Email = ""
	f.users.users[profile.ID] = profile

	order, err := f.svc.CreateOrder(context.Background(),
		models.Identity{UserID: profile.ID, Email: "token@example.com", Role: models.RoleCustomer}, cartRequest())
	require.NoError(t, err)
	assert.Equal(t, "token@example.com", order.CustomerEmail)

	var recipient string
	for _, job := range f.queue.all() {
		if job.Type == models.TypeOrderConfirmation && job.Channel == models.ChannelEmail {
			recipient = job.Recipient
		}
	}
	assert.Equal(t, "token@example.com", recipient)
}

func TestCreateOrderPrefersProfileEmail(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())

	order, err := f.svc.CreateOrder(context.Background(),
		models.Identity{UserID: customer.ID, Email: "stale@example.com"}, cartRequest())
	require.NoError(t, err)
	assert.Equal(t, customer.Email, order.CustomerEmail)
}

func TestCreateOrderStoresRecomputedTotal(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())
	req := &CreateOrderRequest{
		Items:       []OrderItemRequest{{ProductID: "p1", Name: "Ladoo", Quantity: 3, Price: 0.1}},
		TotalAmount: 0.3,
	}

	order, err := f.svc.CreateOrder(context.Background(), customerIdentity, req)
	require.NoError(t, err)
	assert.Equal(t, 0.3, order.TotalAmount)
}

func TestCreateOrderFailedInsertHasNoSideEffects(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())
	f.orders.createErr = errors.New("connection reset")

	_, err := f.svc.CreateOrder(context.Background(), customerIdentity, cartRequest())
	assert.True(t, apperrors.IsCode(err, http.StatusInternalServerError))
	assert.Empty(t, f.queue.all())
	assert.Empty(t, f.carts.cleared)
}

type failingEmail struct{}

func (failingEmail) SendEmail(context.Context, string, string, string) (sender.SendResult, error) {
	return sender.SendResult{}, errors.New("smtp: 421 service not available")
}

type failingChat struct{}

func (failingChat) SendMessage(context.Context, string, string) (sender.SendResult, error) {
	return sender.SendResult{}, errors.New("whatsapp: 500")
}

type countingLogs struct {
	mu   sync.Mutex
	logs []models.NotificationLog
}

func (c *countingLogs) SaveLog(_ context.Context, log *models.NotificationLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, *log)
	return nil
}

func (c *countingLogs) failed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.logs {
		if l.Status == models.StatusFailed {
			n++
		}
	}
	return n
}

func TestCreateOrderSucceedsWhenEveryNotificationFails(t *testing.T) {
	builder, err := notification.NewBuilder(notification.BuilderConfig{
		BusinessName: "Hruday Sparshi",
		AdminEmail:   "admin@example.com",
		AdminPhone:   "+91 90000 00000",
	})
	require.NoError(t, err)

	logs := &countingLogs{}
	dispatcher := notification.NewDispatcher(notification.Config{
		Workers:     2,
		QueueSize:   16,
		Timeout:     time.Second,
		MaxAttempts: 1,
	}, failingEmail{}, failingChat{}, logs, zap.NewNop())
	dispatcher.Start()
	defer dispatcher.Stop(context.Background())

	orders := newFakeOrderRepo()
	svc := NewOrderService(orders, newFakeUserRepo(customer), nil, defaultOrderConfig(), zap.NewNop(),
		WithNotifications(builder, dispatcher),
	)

	order, err := svc.CreateOrder(context.Background(), customerIdentity, cartRequest())
	require.NoError(t, err)
	assert.Len(t, orders.orders, 1)
	assert.Equal(t, models.StatusRequested, order.Status)

	assert.Eventually(t, func() bool { return logs.failed() == 4 }, 2*time.Second, 10*time.Millisecond)
}

func TestCreateOrderIgnoresQueueErrors(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())
	f.queue.err = notification.ErrQueueFull

	_, err := f.svc.CreateOrder(context.Background(), customerIdentity, cartRequest())
	require.NoError(t, err)
}

func TestListForUserNewestFirst(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		order, err := f.svc.CreateOrder(ctx, customerIdentity, cartRequest())
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}

	list, err := f.svc.ListForUser(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1], ids[0]}, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].CreatedAt.After(list[i].CreatedAt))
	}

	empty, err := f.svc.ListForUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestGetOrderOwnership(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, customerIdentity, cartRequest())
	require.NoError(t, err)

	got, err := f.svc.GetOrder(ctx, order.ID.String(), models.Identity{UserID: customer.ID, Role: models.RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.GetOrder(ctx, order.ID.String(), models.Identity{UserID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, order.ID.String(), models.Identity{UserID: "user-2", Role: models.RoleCustomer})
	assert.True(t, apperrors.IsCode(err, http.StatusForbidden))

	_, err = f.svc.GetOrder(ctx, uuid.NewString(), models.Identity{UserID: customer.ID})
	assert.True(t, apperrors.IsCode(err, http.StatusNotFound))

	_, err = f.svc.GetOrder(ctx, "not-a-uuid", models.Identity{UserID: customer.ID})
	assert.True(t, apperrors.IsCode(err, http.StatusNotFound))
}

func TestUpdateStatusLifecycle(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, customerIdentity, cartRequest())
	require.NoError(t, err)
	id := order.ID.String()
	placedJobs := len(f.queue.all())

	_, err = f.svc.UpdateStatus(ctx, id, "SHIPPED")
	assert.True(t, apperrors.IsCode(err, http.StatusBadRequest))

	// REQUESTED -> COMPLETED needs ORDER_ALLOW_STATUS_SKIP.
	_, err = f.svc.UpdateStatus(ctx, id, "COMPLETED")
	assert.True(t, apperrors.IsCode(err, http.StatusBadRequest))

	updated, err := f.svc.UpdateStatus(ctx, id, "PENDING")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)

	updated, err = f.svc.UpdateStatus(ctx, id, "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	_, err = f.svc.UpdateStatus(ctx, id, "PENDING")
	assert.True(t, apperrors.IsCode(err, http.StatusBadRequest))

	stored, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)

	jobs := f.queue.all()[placedJobs:]
	require.Len(t, jobs, 4)
	for _, job := range jobs {
		assert.Equal(t, models.TypeOrderStatusUpdate, job.Type)
		assert.Contains(t, []string{customer.Email, customer.PhoneNumber}, job.Recipient)
	}

	_, err = f.svc.UpdateStatus(ctx, uuid.NewString(), "PENDING")
	assert.True(t, apperrors.IsCode(err, http.StatusNotFound))
}

func TestUpdateStatusSkipWhenAllowed(t *testing.T) {
	f := newOrderFixture(t, config.OrderConfig{AllowStatusSkip: true, TotalEpsilon: 0.01})
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, customerIdentity, cartRequest())
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(ctx, order.ID.String(), "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	assert.Eventually(t, func() bool {
		for _, ev := range f.sns.published() {
			if ev.eventType == models.EventOrderStatusChanged {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestUpdateStatusConflict(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, customerIdentity, cartRequest())
	require.NoError(t, err)

	f.orders.raceTo = models.StatusPending
	_, err = f.svc.UpdateStatus(ctx, order.ID.String(), "PENDING")
	assert.True(t, apperrors.IsCode(err, http.StatusConflict))
}

func TestListByStatus(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())
	ctx := context.Background()
	first, err := f.svc.CreateOrder(ctx, customerIdentity, cartRequest())
	require.NoError(t, err)
	second, err := f.svc.CreateOrder(ctx, customerIdentity, cartRequest())
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, second.ID.String(), "PENDING")
	require.NoError(t, err)
	third, err := f.svc.CreateOrder(ctx, customerIdentity, cartRequest())
	require.NoError(t, err)

	requested, err := f.svc.ListByStatus(ctx, "REQUESTED")
	require.NoError(t, err)
	require.Len(t, requested, 2)
	assert.Equal(t, first.ID, requested[0].ID)
	assert.Equal(t, third.ID, requested[1].ID)

	pending, err := f.svc.ListByStatus(ctx, "PENDING")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	completed, err := f.svc.ListByStatus(ctx, "COMPLETED")
	require.NoError(t, err)
	assert.Empty(t, completed)

	_, err = f.svc.ListByStatus(ctx, "requested")
	assert.True(t, apperrors.IsCode(err, http.StatusBadRequest))
}

func TestDashboardStats(t *testing.T) {
	f := newOrderFixture(t, defaultOrderConfig())
	f.svc.products = newFakeProductRepo(models.Product{ID: "p1"}, models.Product{ID: "p2"}, models.Product{ID: "p3"})
	ctx := context.Background()

	a, err := f.svc.CreateOrder(ctx, customerIdentity, cartRequest())
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(ctx, customerIdentity, cartRequest())
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, a.ID.String(), "PENDING")
	require.NoError(t, err)

	stats, err := f.svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.RequestedOrders)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(0), stats.CompletedOrders)
	assert.Equal(t, 500.0, stats.TotalRevenue)
	assert.Equal(t, int64(3), stats.TotalProducts)
}
