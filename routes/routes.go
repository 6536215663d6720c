package routes

import (
	"github.com/Rohit1034/HrudaySparshi/controllers"
	"github.com/Rohit1034/HrudaySparshi/models"

	"github.com/gin-gonic/gin"
)

// Controllers bundles every handler group the API serves.
type Controllers struct {
	Orders   *controllers.OrderController
	Products *controllers.ProductController
	Homepage *controllers.HomepageController
	Admin    *controllers.AdminController
	Users    *controllers.UserController
	Cart     *controllers.CartController
}

// RegisterRoutes mounts the public, user and admin routes. authenticate
// must set the caller identity; adminOnly must reject non-admins.
func RegisterRoutes(r *gin.Engine, h Controllers, authenticate, adminOnly gin.HandlerFunc) {
	r.GET("/products", h.Products.ListProducts)
	r.GET("/products/:productId", h.Products.GetProduct)
	r.GET("/homepage", h.Homepage.GetContent)

	user := r.Group("/", authenticate)
	{
		user.POST("/orders", h.Orders.CreateOrder)
		user.GET("/orders/user/my-orders", h.Orders.GetMyOrders)
		user.GET("/orders/:orderId", h.Orders.GetOrder)

		user.GET("/users/me", h.Users.GetMe)
		user.PUT("/users/me", h.Users.UpdateMe)

		user.GET("/cart", h.Cart.GetCart)
		user.POST("/cart/items", h.Cart.AddItem)
		user.PUT("/cart/items/:productId", h.Cart.SetQuantity)
		user.DELETE("/cart/items/:productId", h.Cart.RemoveItem)
		user.DELETE("/cart", h.Cart.Clear)
		user.DELETE("/cart/session", h.Cart.EndSession)
	}

	// Admin routes kept on their legacy paths.
	legacyAdmin := r.Group("/", authenticate, adminOnly)
	{
		legacyAdmin.GET("/orders/admin/requested", h.Orders.ListByStatus(models.StatusRequested))
		legacyAdmin.GET("/orders/admin/pending", h.Orders.ListByStatus(models.StatusPending))
		legacyAdmin.GET("/orders/admin/completed", h.Orders.ListByStatus(models.StatusCompleted))
		legacyAdmin.PATCH("/orders/:orderId/status", h.Orders.UpdateStatus)
		legacyAdmin.PUT("/homepage", h.Homepage.UpdateContent)
	}

	admin := r.Group("/admin", authenticate, adminOnly)
	{
		admin.GET("/dashboard/stats", h.Admin.DashboardStats)
		admin.GET("/notifications", h.Admin.ListNotifications)

		admin.GET("/orders", h.Orders.ListOrders)
		admin.GET("/orders/requested", h.Orders.ListByStatus(models.StatusRequested))
		admin.GET("/orders/pending", h.Orders.ListByStatus(models.StatusPending))
		admin.GET("/orders/completed", h.Orders.ListByStatus(models.StatusCompleted))
		admin.PATCH("/orders/:orderId/status", h.Orders.UpdateStatus)

		admin.POST("/products", h.Products.CreateProduct)
		admin.POST("/products/images/presign", h.Products.PresignImageUpload)
		admin.PUT("/products/:productId", h.Products.UpdateProduct)
		admin.DELETE("/products/:productId", h.Products.DeleteProduct)

		admin.PUT("/homepage", h.Homepage.UpdateContent)
	}
}
