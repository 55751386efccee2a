package routes

import (
	"github.com/gin-gonic/gin"

	"food-delivery-backend/config"
	"food-delivery-backend/handlers"
	"food-delivery-backend/middleware"
	"food-delivery-backend/models"
)

// Handlers bundles everything route registration needs.
type Handlers struct {
	JWT         *config.JWTConfig
	Auth        *handlers.AuthHandler
	Restaurants *handlers.RestaurantHandler
	MenuItems   *handlers.MenuItemHandler
	Categories  *handlers.CategoryHandler
	Orders      *handlers.OrderHandler
}

// Register wires all API routes onto the engine.
func Register(r *gin.Engine, h Handlers) {
	authRequired := middleware.AuthRequired(h.JWT)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleRestaurant)

	api := r.Group("/api")

	// ── Auth ───────────────────────────────────────────────────────
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh-token", h.Auth.RefreshToken)
		auth.POST("/revoke-token", authRequired, h.Auth.RevokeToken)
		auth.GET("/me", authRequired, h.Auth.Me)
		auth.PUT("/me", authRequired, h.Auth.UpdateMe)
	}

	// ── Restaurants ────────────────────────────────────────────────
	restaurants := api.Group("/restaurants")
	{
		restaurants.GET("", h.Restaurants.List)
		restaurants.GET("/:id", h.Restaurants.Get)
		restaurants.GET("/:id/menu-items", h.Restaurants.MenuItems)
		restaurants.POST("", authRequired, adminOnly, h.Restaurants.Create)
		restaurants.PUT("/:id", authRequired, adminOnly, h.Restaurants.Update)
		restaurants.DELETE("/:id", authRequired, adminOnly, h.Restaurants.Delete)
	}

	// ── Menu items ─────────────────────────────────────────────────
	menuItems := api.Group("/menu-items")
	{
		menuItems.GET("/:id", h.MenuItems.Get)
		menuItems.POST("", authRequired, staffOnly, h.MenuItems.Create)
		menuItems.PUT("/:id", authRequired, staffOnly, h.MenuItems.Update)
		menuItems.DELETE("/:id", authRequired, staffOnly, h.MenuItems.Delete)
	}

	// ── Categories ─────────────────────────────────────────────────
	categories := api.Group("/categories")
	{
		categories.GET("", h.Categories.List)
		categories.GET("/:id", h.Categories.Get)
		categories.GET("/:id/menu-items", h.Categories.MenuItems)
		categories.POST("", authRequired, adminOnly, h.Categories.Create)
		categories.PUT("/:id", authRequired, adminOnly, h.Categories.Update)
		categories.DELETE("/:id", authRequired, adminOnly, h.Categories.Delete)
	}

	// ── Orders ─────────────────────────────────────────────────────
	orders := api.Group("/orders")
	orders.Use(authRequired)
	{
		orders.POST("", h.Orders.Create)
		orders.GET("/my", h.Orders.My)
		orders.GET("/restaurant/:id", staffOnly, h.Orders.ByRestaurant)
		orders.GET("/:id", h.Orders.Get)
		orders.PUT("/:id/status", staffOnly, h.Orders.UpdateStatus)
		orders.DELETE("/:id", h.Orders.Delete)
	}
}
