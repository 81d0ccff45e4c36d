package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", models.ErrInvalidInput, key)
	}
	return n, nil
}

// TopItems ranks menu items by quantity sold
func (h *APIHandler) TopItems(c *gin.Context) {
	days, err := queryInt(c, "days")
	if err != nil {
		h.respondError(c, err)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.respondError(c, err)
		return
	}

	items, err := h.reports.TopSellingItems(c.Request.Context(), days, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, items)
}

// SalesSummary reports paid revenue over a date range
func (h *APIHandler) SalesSummary(c *gin.Context) {
	days, err := queryInt(c, "days")
	if err != nil {
		h.respondError(c, err)
		return
	}
	summary, err := h.reports.Summary(c.Request.Context(), days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, summary)
}
