package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-delivery-backend/services"
)

// RestaurantHandler exposes restaurant catalog endpoints.
type RestaurantHandler struct {
	catalog *services.CatalogService
	log     *zap.Logger
}

func NewRestaurantHandler(catalog *services.CatalogService, log *zap.Logger) *RestaurantHandler {
	return &RestaurantHandler{catalog: catalog, log: log}
}

// List returns active restaurants, filtered and paged by query params.
func (h *RestaurantHandler) List(c *gin.Context) {
	var filter services.RestaurantFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter parameters: " + err.Error()})
		return
	}

	page, err := h.catalog.ListRestaurants(filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *RestaurantHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	restaurant, err := h.catalog.GetRestaurant(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

func (h *RestaurantHandler) Create(c *gin.Context) {
	var in services.RestaurantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	restaurant, err := h.catalog.CreateRestaurant(in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, restaurant)
}

func (h *RestaurantHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in services.RestaurantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	restaurant, err := h.catalog.UpdateRestaurant(id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

func (h *RestaurantHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteRestaurant(id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MenuItems returns the restaurant's available menu items.
func (h *RestaurantHandler) MenuItems(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	items, err := h.catalog.ListMenuItemsByRestaurant(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
