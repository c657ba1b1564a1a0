package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/procboard/procboard/api/models"
)

// CreateUser handles POST /users
func (s *Server) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: err.Error()})
		return
	}
	if req.Role != "" && req.Role != "admin" && req.Role != "member" {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: "role must be admin or member"})
		return
	}

	user := &models.User{Name: req.Name, Email: req.Email, Role: req.Role}
	if err := s.users.Create(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to create user"})
		return
	}

	s.hub.NotifyStateChanged()
	c.JSON(http.StatusCreated, user)
}

// ListUsers handles GET /users
func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /users/:id
func (s *Server) GetUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_uuid", ErrorDescription: "Invalid UUID format"})
		return
	}

	user, err := s.users.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, Error{Error: "not_found", ErrorDescription: "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to load user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser handles PUT /users/:id
func (s *Server) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_uuid", ErrorDescription: "Invalid UUID format"})
		return
	}

	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: err.Error()})
		return
	}

	user := &models.User{ID: id, Name: req.Name, Email: req.Email, Role: req.Role}
	if user.Role == "" {
		user.Role = "member"
	}

	err := s.users.Update(c.Request.Context(), user)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, Error{Error: "not_found", ErrorDescription: "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to update user"})
		return
	}

	s.hub.NotifyStateChanged()
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /users/:id
func (s *Server) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_uuid", ErrorDescription: "Invalid UUID format"})
		return
	}

	err := s.users.Delete(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, Error{Error: "not_found", ErrorDescription: "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to delete user"})
		return
	}

	s.hub.NotifyStateChanged()
	c.Status(http.StatusNoContent)
}
