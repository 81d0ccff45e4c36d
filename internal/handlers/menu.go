package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yishak-cs/cafe-pos/internal/models"
	"github.com/yishak-cs/cafe-pos/internal/services"
)

type createMenuItemRequest struct {
	Name          string        `json:"name" binding:"required,max=100"`
	Description   string        `json:"description" binding:"max=500"`
	Price         float64       `json:"price" binding:"gte=0"`
	Category      string        `json:"category" binding:"required"`
	Image         string        `json:"image"`
	StockQuantity int           `json:"stockQuantity" binding:"gte=0"`
	MinimumStock  *int          `json:"minimumStock" binding:"omitempty,gte=0"`
	ExpiryDate    *flexibleTime `json:"expiryDate"`
	IsAvailable   *bool         `json:"isAvailable"`
}

type updateMenuItemRequest struct {
	Name         *string       `json:"name" binding:"omitempty,min=1,max=100"`
	Description  *string       `json:"description" binding:"omitempty,max=500"`
	Price        *float64      `json:"price" binding:"omitempty,gte=0"`
	Category     *string       `json:"category"`
	MinimumStock *int          `json:"minimumStock" binding:"omitempty,gte=0"`
	ExpiryDate   *flexibleTime `json:"expiryDate"`
	IsAvailable  *bool         `json:"isAvailable"`

	// only decoded to reject it; stock moves through the stock endpoint
	StockQuantity *int `json:"stockQuantity"`
}

type stockRequest struct {
	Adjustment *int `json:"adjustment"`
	Quantity   *int `json:"quantity" binding:"omitempty,gte=0"`
}

// ListMenuItems handles GET /api/menu-items
func (h *APIHandler) ListMenuItems(c *gin.Context) {
	filter := models.MenuFilter{
		Category:      c.Query("category"),
		AvailableOnly: c.Query("available") == "true",
	}
	items, err := h.menu.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, items)
}

// LowStockMenuItems lists items at or below their threshold
func (h *APIHandler) LowStockMenuItems(c *gin.Context) {
	items, err := h.menu.LowStock(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, items)
}

// GetMenuItem handles GET /api/menu-items/:id
func (h *APIHandler) GetMenuItem(c *gin.Context) {
	item, err := h.menu.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, item)
}

// CreateMenuItem handles POST /api/menu-items
func (h *APIHandler) CreateMenuItem(c *gin.Context) {
	var req createMenuItemRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	item, err := h.menu.Create(c.Request.Context(), services.MenuItemInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		Image:         req.Image,
		StockQuantity: req.StockQuantity,
		MinimumStock:  req.MinimumStock,
		ExpiryDate:    req.ExpiryDate.ptr(),
		IsAvailable:   req.IsAvailable,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, item)
}

// UpdateMenuItem handles PUT /api/menu-items/:id
func (h *APIHandler) UpdateMenuItem(c *gin.Context) {
	var req updateMenuItemRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	if req.StockQuantity != nil {
		h.respondError(c, fmt.Errorf("%w: stockQuantity cannot be updated here, use POST /api/menu-items/%s/stock",
			models.ErrInvalidInput, c.Param("id")))
		return
	}

	item, err := h.menu.Update(c.Request.Context(), c.Param("id"), services.MenuItemUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		MinimumStock: req.MinimumStock,
		ExpiryDate:   req.ExpiryDate.ptr(),
		IsAvailable:  req.IsAvailable,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, item)
}

// DeleteMenuItem handles DELETE /api/menu-items/:id
func (h *APIHandler) DeleteMenuItem(c *gin.Context) {
	id := c.Param("id")
	if err := h.menu.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "message": "menu item removed"})
}

// AdjustMenuItemStock adds or removes stock by a signed delta
func (h *APIHandler) AdjustMenuItemStock(c *gin.Context) {
	var req stockRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	item, err := h.menu.AdjustStock(c.Request.Context(), c.Param("id"), services.StockChange{
		Adjustment: req.Adjustment,
		Quantity:   req.Quantity,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, item)
}

// UploadMenuItemImage stores an image for a menu item
func (h *APIHandler) UploadMenuItemImage(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.menu.Get(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	path, err := h.saveImage(c, "menu", id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	item, err := h.menu.SetImage(c.Request.Context(), id, path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, item)
}
