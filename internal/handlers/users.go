package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yishak-cs/cafe-pos/internal/models"
	"github.com/yishak-cs/cafe-pos/internal/services"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createUserRequest struct {
	Username string      `json:"username" binding:"required,min=3,max=50"`
	Password string      `json:"password" binding:"required,min=6,max=72"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=admin supervisor waiter manager cashier"`
}

type updateUserRequest struct {
	Username *string      `json:"username" binding:"omitempty,min=3,max=50"`
	Password *string      `json:"password" binding:"omitempty,min=6,max=72"`
	Role     *models.Role `json:"role" binding:"omitempty,oneof=admin supervisor waiter manager cashier"`
}

// Login exchanges credentials for a bearer token
func (h *APIHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	session, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, session)
}

// Register is public self sign-up; the account always starts as a waiter
func (h *APIHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	session, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, session)
}

// Logout only acknowledges; tokens are stateless and expire on their own
func (h *APIHandler) Logout(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the caller's account
func (h *APIHandler) Me(c *gin.Context) {
	user, _ := c.Get(ctxUser)
	respond(c, http.StatusOK, user)
}

// ListUsers handles GET /api/users
func (h *APIHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, users)
}

// GetUser handles GET /api/users/:id
func (h *APIHandler) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// CreateUser handles POST /api/users
func (h *APIHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	user, err := h.users.Create(c.Request.Context(), services.UserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

// UpdateUser handles PUT /api/users/:id
func (h *APIHandler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	user, err := h.users.Update(c.Request.Context(), c.Param("id"), services.UserUpdate{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/:id
func (h *APIHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.users.Delete(c.Request.Context(), currentActor(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "message": "user removed"})
}
