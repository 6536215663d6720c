package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "github.com/Rohit1034/HrudaySparshi/common/errors"
	"github.com/Rohit1034/HrudaySparshi/common/logger"
	"github.com/Rohit1034/HrudaySparshi/config"
	"github.com/Rohit1034/HrudaySparshi/models"
	"github.com/Rohit1034/HrudaySparshi/notification"
	aws_pkg "github.com/Rohit1034/HrudaySparshi/pkg/aws"
	"github.com/Rohit1034/HrudaySparshi/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Price     float64 `json:"price" binding:"min=0"`
}

type CreateOrderRequest struct {
	Items       []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	TotalAmount float64            `json:"totalAmount" binding:"min=0"`
}

// NotificationQueue accepts rendered jobs for background delivery.
type NotificationQueue interface {
	Enqueue(jobs ...notification.Job) error
}

// CartClearer empties a user's live cart after checkout.
type CartClearer interface {
	ClearIfActive(ctx context.Context, userID string)
}

// ProductCounter is the slice of the catalog the dashboard needs.
type ProductCounter interface {
	Count(ctx context.Context) (int64, error)
}

type OrderService struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	products ProductCounter
	cfg      config.OrderConfig
	logger   *zap.Logger

	builder *notification.Builder
	queue   NotificationQueue
	carts   CartClearer
	events  *OrderEvents
	metrics *aws_pkg.MetricsClient
	now     func() time.Time
}

type OrderServiceOption func(*OrderService)

// WithNotifications makes the service fan out order notifications.
func WithNotifications(builder *notification.Builder, queue NotificationQueue) OrderServiceOption {
	return func(s *OrderService) {
		s.builder = builder
		s.queue = queue
	}
}

func WithCartClearer(carts CartClearer) OrderServiceOption {
	return func(s *OrderService) { s.carts = carts }
}

func WithOrderEvents(events *OrderEvents) OrderServiceOption {
	return func(s *OrderService) { s.events = events }
}

func WithOrderMetrics(m *aws_pkg.MetricsClient) OrderServiceOption {
	return func(s *OrderService) { s.metrics = m }
}

func NewOrderService(orders repository.OrderRepository, users repository.UserRepository, products ProductCounter, cfg config.OrderConfig, log *zap.Logger, opts ...OrderServiceOption) *OrderService {
	s := &OrderService{
		orders:   orders,
		users:    users,
		products: products,
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder persists a REQUESTED order built from the caller's profile and
// the submitted items. The token email stands in when the profile has none.
// Notifications, events and cart cleanup happen after the insert and never
// change the result.
func (s *OrderService) CreateOrder(ctx context.Context, requester models.Identity, req *CreateOrderRequest) (*models.Order, error) {
	userID := requester.UserID
	if req == nil || len(req.Items) == 0 {
		return nil, apperrors.InvalidArgument("At least one item is required")
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if strings.TrimSpace(it.ProductID) == "" || it.Quantity < 1 || it.Price < 0 {
			return nil, apperrors.InvalidArgument("Invalid order item")
		}
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	total := models.ItemsTotal(items)
	if math.Abs(total-req.TotalAmount) > s.cfg.TotalEpsilon {
		return nil, apperrors.InvalidArgument(fmt.Sprintf("Total amount mismatch: expected %.2f", total))
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load user profile", err)
	}

	email := strings.TrimSpace(user.Email)
	if email == "" {
		email = requester.Email
	}

	now := s.now().UTC()
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		CustomerName:    user.FullName,
		CustomerEmail:   email,
		CustomerPhone:   user.PhoneNumber,
		DeliveryAddress: user.Address,
		Items:           items,
		TotalAmount:     total,
		Status:          models.StatusRequested,
		PaymentMode:     models.PaymentModeOffline,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperrors.Internal("Failed to create order", err)
	}

	log := logger.FromContext(ctx, s.logger)
	log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID),
		zap.Float64("total_amount", order.TotalAmount),
		zap.Int("items", len(items)),
	)

	s.notify(ctx, order, true)
	s.events.Publish(ctx, models.EventOrderCreated, order)
	s.count(aws_pkg.MetricOrdersCreated)
	if s.carts != nil {
		s.carts.ClearIfActive(ctx, userID)
	}

	return order, nil
}

// GetOrder returns the order if the requester owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID string, requester models.Identity) (*models.Order, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requester.UserID && !requester.IsAdmin() {
		return nil, apperrors.Forbidden("Access denied")
	}
	return order, nil
}

// ListForUser returns every order of the user, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// ListByStatus returns orders in the given status, oldest first.
func (s *OrderService) ListByStatus(ctx context.Context, status string) ([]models.Order, error) {
	st, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, apperrors.InvalidArgument("Invalid status")
	}
	orders, err := s.orders.FindByStatus(ctx, st)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// UpdateStatus moves an order one step forward in its lifecycle.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	to, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, apperrors.InvalidArgument("Invalid status")
	}

	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !models.CanTransition(from, to, s.cfg.AllowStatusSkip) {
		return nil, apperrors.InvalidArgument(fmt.Sprintf("Cannot change status from %s to %s", from, to))
	}

	now := s.now().UTC()
	err = s.orders.UpdateStatus(ctx, order.ID, from, to, now)
	switch {
	case errors.Is(err, repository.ErrStatusConflict):
		return nil, apperrors.Conflict("Order status changed concurrently, reload and retry")
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NotFound("Order not found")
	case err != nil:
		return nil, apperrors.Internal("Failed to update order status", err)
	}

	order.Status = to
	order.UpdatedAt = now

	logger.FromContext(ctx, s.logger).Info("order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	if to != models.StatusRequested {
		s.notify(ctx, order, false)
	}
	s.events.Publish(ctx, models.EventOrderStatusChanged, order)
	if to == models.StatusCompleted {
		s.count(aws_pkg.MetricOrdersCompleted)
	}

	return order, nil
}

// DashboardStats aggregates order counts, revenue and catalog size.
func (s *OrderService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	summary, err := s.orders.StatusSummary(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to compute stats", err)
	}

	stats := &models.DashboardStats{}
	var revenue float64
	for _, row := range summary {
		stats.TotalOrders += row.Count
		revenue += row.Revenue
		switch row.Status {
		case models.StatusRequested:
			stats.RequestedOrders = row.Count
		case models.StatusPending:
			stats.PendingOrders = row.Count
		case models.StatusCompleted:
			stats.CompletedOrders = row.Count
		}
	}
	stats.TotalRevenue = models.RoundCurrency(revenue)

	if s.products != nil {
		count, err := s.products.Count(ctx)
		if err != nil {
			return nil, apperrors.Internal("Failed to compute stats", err)
		}
		stats.TotalProducts = count
	}
	return stats, nil
}

func (s *OrderService) find(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, apperrors.NotFound("Order not found")
	}
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch order", err)
	}
	return order, nil
}

// notify renders and queues the order's notifications. Failures are logged
// only.
func (s *OrderService) notify(ctx context.Context, order *models.Order, placed bool) {
	if s.builder == nil || s.queue == nil {
		return
	}
	log := logger.FromContext(ctx, s.logger).With(zap.String("order_id", order.ID.String()))

	var jobs []notification.Job
	var err error
	if placed {
		jobs, err = s.builder.OrderPlaced(order)
	} else {
		jobs, err = s.builder.StatusChanged(order)
	}
	if err != nil {
		log.Warn("failed to render notifications", zap.Error(err))
		return
	}

	requestID := logger.RequestIDFrom(ctx)
	for i := range jobs {
		jobs[i].RequestID = requestID
	}
	if err := s.queue.Enqueue(jobs...); err != nil {
		log.Warn("failed to queue notifications", zap.Error(err))
	}
}

func (s *OrderService) count(metric string) {
	if !s.metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.metrics.RecordCount(ctx, metric, nil); err != nil {
			s.logger.Debug("failed to record metric", zap.String("metric", metric), zap.Error(err))
		}
	}()
}
