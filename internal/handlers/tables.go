package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yishak-cs/cafe-pos/internal/models"
	"github.com/yishak-cs/cafe-pos/internal/services"
)

type createTableRequest struct {
	TableNumber    string             `json:"tableNumber" binding:"required"`
	Seats          int                `json:"seats" binding:"required,min=1"`
	Location       string             `json:"location" binding:"required"`
	Status         models.TableStatus `json:"status" binding:"omitempty,oneof=available occupied reserved"`
	AssignedWaiter *string            `json:"assignedWaiter"`
	Position       *models.Position   `json:"position"`
}

type updateTableRequest struct {
	TableNumber    *string             `json:"tableNumber" binding:"omitempty,min=1"`
	Seats          *int                `json:"seats" binding:"omitempty,min=1"`
	Location       *string             `json:"location"`
	Status         *models.TableStatus `json:"status" binding:"omitempty,oneof=available occupied reserved"`
	AssignedWaiter *string             `json:"assignedWaiter"`
	Position       *models.Position    `json:"position"`
}

type positionRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

type mergeTablesRequest struct {
	Table1ID string `json:"table1Id" binding:"required"`
	Table2ID string `json:"table2Id" binding:"required"`
}

// ListTables handles GET /api/tables
func (h *APIHandler) ListTables(c *gin.Context) {
	filter := models.TableFilter{Status: models.TableStatus(c.Query("status"))}
	tables, err := h.tables.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, tables)
}

// GetTable handles GET /api/tables/:id
func (h *APIHandler) GetTable(c *gin.Context) {
	table, err := h.tables.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, table)
}

// CreateTable handles POST /api/tables
func (h *APIHandler) CreateTable(c *gin.Context) {
	var req createTableRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	table, err := h.tables.Create(c.Request.Context(), currentActor(c), services.TableInput{
		TableNumber:    req.TableNumber,
		Seats:          req.Seats,
		Location:       req.Location,
		Status:         req.Status,
		AssignedWaiter: req.AssignedWaiter,
		Position:       req.Position,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, table)
}

// UpdateTable handles PUT /api/tables/:id
func (h *APIHandler) UpdateTable(c *gin.Context) {
	var req updateTableRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	table, err := h.tables.Update(c.Request.Context(), c.Param("id"), services.TableUpdate{
		TableNumber:    req.TableNumber,
		Seats:          req.Seats,
		Location:       req.Location,
		Status:         req.Status,
		AssignedWaiter: req.AssignedWaiter,
		Position:       req.Position,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, table)
}

// UpdateTablePosition moves a table on the floor plan
func (h *APIHandler) UpdateTablePosition(c *gin.Context) {
	var req positionRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	table, err := h.tables.UpdatePosition(c.Request.Context(), c.Param("id"), models.Position{X: *req.X, Y: *req.Y})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, table)
}

// MergeTables joins tables under one primary
func (h *APIHandler) MergeTables(c *gin.Context) {
	var req mergeTablesRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	table, err := h.tables.Merge(c.Request.Context(), req.Table1ID, req.Table2ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, table)
}

// DeleteTable handles DELETE /api/tables/:id
func (h *APIHandler) DeleteTable(c *gin.Context) {
	id := c.Param("id")
	if err := h.tables.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "message": "table removed"})
}
