package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yishak-cs/cafe-pos/internal/models"
	"github.com/yishak-cs/cafe-pos/internal/services"
)

type customerRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"max=30"`
	Address string `json:"address" binding:"max=200"`
}

// Subtotal, tax and total sent by clients are not part of the request.
// They are recomputed from the lines.
type createInvoiceRequest struct {
	InvoiceNumber     string               `json:"invoiceNumber" binding:"max=50"`
	CustomerDetails   customerRequest      `json:"customerDetails"`
	OrderID           string               `json:"orderId"`
	Items             []lineRequest        `json:"items" binding:"omitempty,dive"`
	TaxRate           *float64             `json:"taxRate" binding:"omitempty,gte=0,lte=100"`
	ServiceChargeRate *float64             `json:"serviceChargeRate" binding:"omitempty,gte=0,lte=100"`
	DiscountRate      *float64             `json:"discountRate" binding:"omitempty,gte=0,lte=100"`
	Status            models.InvoiceStatus `json:"status" binding:"omitempty,oneof=paid pending cancelled"`
	Date              *flexibleTime        `json:"date"`
}

type invoiceStatusRequest struct {
	Status models.InvoiceStatus `json:"status" binding:"required,oneof=paid pending cancelled"`
}

// ListInvoices handles GET /api/invoices
func (h *APIHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.invoices.List(c.Request.Context(), models.InvoiceFilter{Status: models.InvoiceStatus(c.Query("status"))})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, invoices)
}

// GetInvoice handles GET /api/invoices/:id
func (h *APIHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// CreateInvoice bills an order, completing it first if needed
func (h *APIHandler) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	invoice, err := h.invoices.Create(c.Request.Context(), currentActor(c), services.InvoiceInput{
		InvoiceNumber: req.InvoiceNumber,
		CustomerDetails: models.CustomerDetails{
			Name:    req.CustomerDetails.Name,
			Email:   req.CustomerDetails.Email,
			Phone:   req.CustomerDetails.Phone,
			Address: req.CustomerDetails.Address,
		},
		OrderID:           req.OrderID,
		Items:             lines(req.Items),
		TaxRate:           req.TaxRate,
		ServiceChargeRate: req.ServiceChargeRate,
		DiscountRate:      req.DiscountRate,
		Status:            req.Status,
		Date:              req.Date.ptr(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, invoice)
}

// UpdateInvoice changes the status only; amounts are fixed at issue time
func (h *APIHandler) UpdateInvoice(c *gin.Context) {
	var req invoiceStatusRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	invoice, err := h.invoices.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, invoice)
}

// DeleteInvoice handles DELETE /api/invoices/:id
func (h *APIHandler) DeleteInvoice(c *gin.Context) {
	id := c.Param("id")
	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "message": "invoice removed"})
}
