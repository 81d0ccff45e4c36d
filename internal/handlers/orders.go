package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yishak-cs/cafe-pos/internal/models"
	"github.com/yishak-cs/cafe-pos/internal/services"
)

type lineRequest struct {
	MenuItem string `json:"menuItem" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type placeOrderRequest struct {
	Table         string           `json:"table" binding:"required"`
	Items         []lineRequest    `json:"items" binding:"required,min=1,dive"`
	OrderType     models.OrderType `json:"orderType" binding:"omitempty,oneof=KOT BOT"`
	Discount      *float64         `json:"discount" binding:"omitempty,gte=0,lte=100"`
	Taxes         *float64         `json:"taxes" binding:"omitempty,gte=0,lte=100"`
	ServiceCharge *float64         `json:"serviceCharge" binding:"omitempty,gte=0,lte=100"`
}

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=pending making served completed cancelled"`
}

func lines(reqs []lineRequest) []services.OrderLine {
	out := make([]services.OrderLine, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, services.OrderLine{MenuItem: r.MenuItem, Quantity: r.Quantity})
	}
	return out
}

// ListOrders handles GET /api/orders
func (h *APIHandler) ListOrders(c *gin.Context) {
	filter := models.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Table:  c.Query("table"),
	}
	orders, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, orders)
}

// GetOrder handles GET /api/orders/:id
func (h *APIHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// PlaceOrder handles POST /api/orders
func (h *APIHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	order, err := h.orders.Place(c.Request.Context(), currentActor(c), services.OrderInput{
		Table:         req.Table,
		Items:         lines(req.Items),
		OrderType:     req.OrderType,
		Discount:      req.Discount,
		Taxes:         req.Taxes,
		ServiceCharge: req.ServiceCharge,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, order)
}

// UpdateOrderStatus moves an order along its lifecycle
func (h *APIHandler) UpdateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), currentActor(c), c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// CancelOrder cancels instead of deleting so stock and the table are restored
func (h *APIHandler) CancelOrder(c *gin.Context) {
	order, err := h.orders.Cancel(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}
