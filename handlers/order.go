package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-delivery-backend/middleware"
	"food-delivery-backend/models"
	"food-delivery-backend/services"
)

// OrderHandler exposes order placement and management endpoints.
type OrderHandler struct {
	orders *services.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders *services.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// Create places an order for the authenticated user.
func (h *OrderHandler) Create(c *gin.Context) {
	var in services.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orders.Create(middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// My returns the caller's orders.
func (h *OrderHandler) My(c *gin.Context) {
	orders, err := h.orders.ListByUser(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ByRestaurant returns a restaurant's orders (Admin/Restaurant only,
// gated in routes).
func (h *OrderHandler) ByRestaurant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	orders, err := h.orders.ListByRestaurant(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Get returns one order; only the owner, an admin or a restaurant user
// may see it.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetByID(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if order.UserID != middleware.GetUserID(c) &&
		!middleware.HasRole(c, models.RoleAdmin) &&
		!middleware.HasRole(c, models.RoleRestaurant) {
		c.JSON(http.StatusForbidden, gin.H{"error": "this order does not belong to you"})
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// UpdateStatus sets an order's status (Admin/Restaurant only, gated in
// routes).
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orders.UpdateStatus(id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Delete removes an order; only the owner or an admin may delete it.
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetByID(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if order.UserID != middleware.GetUserID(c) && !middleware.HasRole(c, models.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "this order does not belong to you"})
		return
	}

	if err := h.orders.Delete(id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
