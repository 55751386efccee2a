package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-delivery-backend/services"
)

// MenuItemHandler exposes menu item catalog endpoints.
type MenuItemHandler struct {
	catalog *services.CatalogService
	log     *zap.Logger
}

func NewMenuItemHandler(catalog *services.CatalogService, log *zap.Logger) *MenuItemHandler {
	return &MenuItemHandler{catalog: catalog, log: log}
}

func (h *MenuItemHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.catalog.GetMenuItem(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *MenuItemHandler) Create(c *gin.Context) {
	var in services.MenuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.catalog.CreateMenuItem(in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *MenuItemHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in services.MenuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.catalog.UpdateMenuItem(id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *MenuItemHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteMenuItem(id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
