package api

import (
	"github.com/example/ec-fulfillment/internal/api/middleware"
	"github.com/example/ec-fulfillment/internal/auth"
	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/example/ec-fulfillment/internal/logger"
	"github.com/gin-gonic/gin"
)

func NewRouter(h *Handlers, ah *AuthHandlers, tokens *auth.JWTService, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	r.GET("/health", h.Health)

	api := r.Group("/api")

	// Auth
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", ah.Register)
		authGroup.POST("/login", ah.Login)
		authGroup.POST("/refresh", ah.Refresh)
		authGroup.POST("/logout", ah.Logout)
		authGroup.GET("/me", middleware.Auth(tokens), ah.Me)
	}

	// Catalog (public)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/categories", h.ListCategories)
	api.GET("/categories/:slug", h.GetCategory)
	api.GET("/promotions/:code", h.GetPromotion)

	user := api.Group("")
	user.Use(middleware.Auth(tokens))
	{
		user.GET("/cart", h.GetCart)
		user.DELETE("/cart", h.ClearCart)
		user.POST("/cart/items", h.AddToCart)
		user.PUT("/cart/items/:productId", h.UpdateCartItem)
		user.DELETE("/cart/items/:productId", h.RemoveFromCart)

		user.GET("/orders", h.ListOrders)
		user.POST("/orders", h.PlaceOrder)
		user.GET("/orders/:id", h.GetOrder)
		user.POST("/orders/:id/cancel", h.CancelOrder)
		user.POST("/orders/:id/complete", h.CompleteOrder)

		user.POST("/payments", h.InitiatePayment)
		user.GET("/payments/:id", h.GetPayment)

		user.GET("/shipments/:id", h.GetShipment)

		user.GET("/profile", h.GetProfile)
		user.POST("/profile", h.CreateProfile)
		user.POST("/profile/addresses", h.AddAddress)
		user.PUT("/profile/addresses/:id/default", h.SetDefaultAddress)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.Auth(tokens), middleware.RequireRole(account.RoleAdmin))
	{
		admin.POST("/products", h.CreateProduct)
		admin.GET("/products/:id/inventory", h.GetInventory)
		admin.POST("/products/:id/inventory", h.AdjustInventory)
		admin.POST("/categories", h.CreateCategory)
		admin.POST("/promotions", h.CreatePromotion)
		admin.GET("/orders", h.ListOrdersByStatus)

		admin.POST("/payments/:id/authorize", h.AuthorizePayment)
		admin.POST("/payments/:id/capture", h.CapturePayment)
		admin.POST("/payments/:id/fail", h.FailPayment)
		admin.POST("/payments/:id/refund", h.RefundPayment)

		admin.POST("/shipments", h.CreateShipment)
		admin.PUT("/shipments/:id/status", h.UpdateShipmentStatus)
		admin.POST("/shipments/:id/deliver", h.MarkDelivered)
	}

	return r
}
