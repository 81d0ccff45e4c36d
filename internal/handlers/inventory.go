package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yishak-cs/cafe-pos/internal/services"
)

type supplyRequest struct {
	Name          string        `json:"name" binding:"required,max=100"`
	Brand         string        `json:"brand" binding:"required,max=100"`
	Specification string        `json:"specification" binding:"max=500"`
	ExpiryDate    *flexibleTime `json:"expiryDate"`
	CostPrice     float64       `json:"costPrice" binding:"gte=0"`
	Quantity      int           `json:"quantity" binding:"gte=0"`
	Image         string        `json:"image"`
}

func (r supplyRequest) input() services.SupplyInput {
	return services.SupplyInput{
		Name:          r.Name,
		Brand:         r.Brand,
		Specification: r.Specification,
		ExpiryDate:    r.ExpiryDate.ptr(),
		CostPrice:     r.CostPrice,
		Quantity:      r.Quantity,
		Image:         r.Image,
	}
}

// ListSupplies handles GET /api/inventory
func (h *APIHandler) ListSupplies(c *gin.Context) {
	supplies, err := h.supplies.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, supplies)
}

// GetSupply handles GET /api/inventory/:id
func (h *APIHandler) GetSupply(c *gin.Context) {
	supply, err := h.supplies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, supply)
}

// CreateSupply handles POST /api/inventory
func (h *APIHandler) CreateSupply(c *gin.Context) {
	var req supplyRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	supply, err := h.supplies.Create(c.Request.Context(), req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, supply)
}

// UpdateSupply handles PUT /api/inventory/:id
func (h *APIHandler) UpdateSupply(c *gin.Context) {
	var req supplyRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	supply, err := h.supplies.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, supply)
}

// DeleteSupply handles DELETE /api/inventory/:id
func (h *APIHandler) DeleteSupply(c *gin.Context) {
	id := c.Param("id")
	if err := h.supplies.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "message": "inventory item removed"})
}

// AddSampleSupplies seeds the demo supplies
func (h *APIHandler) AddSampleSupplies(c *gin.Context) {
	supplies, err := h.supplies.AddSamples(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	count := len(supplies)
	c.JSON(http.StatusCreated, envelope{Success: true, Data: supplies, Count: &count})
}

// UploadSupplyImage stores an image for a supply
func (h *APIHandler) UploadSupplyImage(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.supplies.Get(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	path, err := h.saveImage(c, "supply", id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	supply, err := h.supplies.SetImage(c.Request.Context(), id, path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, supply)
}
