package controllers

import (
	"net/http"

	"github.com/Rohit1034/HrudaySparshi/middleware"
	"github.com/Rohit1034/HrudaySparshi/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService CartServiceAPI
}

func NewCartController(cartService CartServiceAPI) *CartController {
	return &CartController{cartService: cartService}
}

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (cc *CartController) GetCart(c *gin.Context) {
	cc.respond(c, func(userID string) (*services.CartView, error) {
		return cc.cartService.GetCart(c.Request.Context(), userID)
	})
}

func (cc *CartController) AddItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cc.respond(c, func(userID string) (*services.CartView, error) {
		return cc.cartService.AddItem(c.Request.Context(), userID, req.ProductID)
	})
}

// SetQuantity overwrites the quantity; zero or less removes the item.
func (cc *CartController) SetQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cc.respond(c, func(userID string) (*services.CartView, error) {
		return cc.cartService.SetQuantity(c.Request.Context(), userID, c.Param("productId"), *req.Quantity)
	})
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	cc.respond(c, func(userID string) (*services.CartView, error) {
		return cc.cartService.RemoveItem(c.Request.Context(), userID, c.Param("productId"))
	})
}

func (cc *CartController) Clear(c *gin.Context) {
	cc.respond(c, func(userID string) (*services.CartView, error) {
		return cc.cartService.Clear(c.Request.Context(), userID)
	})
}

// EndSession drops the in-memory cart on logout.
func (cc *CartController) EndSession(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	cc.cartService.EndSession(userID)
	c.Status(http.StatusNoContent)
}

func (cc *CartController) respond(c *gin.Context, fn func(userID string) (*services.CartView, error)) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	cart, err := fn(userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cart)
}
