package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/Rohit1034/HrudaySparshi/models"
	"github.com/Rohit1034/HrudaySparshi/services"

	"github.com/gin-gonic/gin"
)

// DefaultContextTimeout bounds store calls made by a handler.
const DefaultContextTimeout = 30 * time.Second

type OrderServiceAPI interface {
	CreateOrder(ctx context.Context, requester models.Identity, req *services.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orderID string, requester models.Identity) (*models.Order, error)
	ListForUser(ctx context.Context, userID string) ([]models.Order, error)
	ListByStatus(ctx context.Context, status string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

type ProductServiceAPI interface {
	ListProducts(ctx context.Context, category string) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, req *services.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, req *services.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	PresignImageUpload(ctx context.Context, contentType string, expiry time.Duration) (*services.PresignedUpload, error)
}

type HomepageServiceAPI interface {
	GetContent(ctx context.Context) (*models.HomepageContent, error)
	UpdateContent(ctx context.Context, req *services.UpdateHomepageRequest) (*models.HomepageContent, error)
}

type UserServiceAPI interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, identity models.Identity, req *services.UpdateProfileRequest) (*models.User, error)
}

type CartServiceAPI interface {
	GetCart(ctx context.Context, userID string) (*services.CartView, error)
	AddItem(ctx context.Context, userID, productID string) (*services.CartView, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) (*services.CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (*services.CartView, error)
	Clear(ctx context.Context, userID string) (*services.CartView, error)
	EndSession(userID string)
}

// NotificationLogReader serves the admin notification history.
type NotificationLogReader interface {
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
}
