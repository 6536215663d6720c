package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Rohit1034/HrudaySparshi/middleware"
	"github.com/Rohit1034/HrudaySparshi/models"
	"github.com/Rohit1034/HrudaySparshi/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService OrderServiceAPI
}

func NewOrderController(orderService OrderServiceAPI) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder places an order for the authenticated user.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultContextTimeout)
	defer cancel()

	order, err := oc.orderService.CreateOrder(ctx, identity, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"orderId": order.ID.String(),
		"message": "Order created successfully",
	})
}

// GetOrder returns one order to its owner or an admin.
func (oc *OrderController) GetOrder(c *gin.Context) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := oc.orderService.GetOrder(c.Request.Context(), c.Param("orderId"), identity)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetMyOrders lists the caller's orders, newest first.
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders, err := oc.orderService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListByStatus serves the fixed per-status admin routes.
func (oc *OrderController) ListByStatus(status models.OrderStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		oc.listByStatus(c, string(status))
	}
}

// ListOrders serves GET /admin/orders?status=.
func (oc *OrderController) ListOrders(c *gin.Context) {
	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status query parameter is required"})
		return
	}
	oc.listByStatus(c, status)
}

func (oc *OrderController) listByStatus(c *gin.Context, status string) {
	orders, err := oc.orderService.ListByStatus(c.Request.Context(), status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// UpdateStatus moves an order to the requested status.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	order, err := oc.orderService.UpdateStatus(c.Request.Context(), c.Param("orderId"), req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderId": order.ID.String(),
		"status":  order.Status,
		"message": fmt.Sprintf("Order status updated to %s", order.Status),
	})
}
