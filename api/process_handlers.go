package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/procboard/procboard/api/models"
)

// processFromRequest validates and converts the request payload. Returns a
// descriptive error string for the client on failure.
func processFromRequest(req *ProcessRequest) (*models.Process, string) {
	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}
	if !validPriorities[priority] {
		return nil, "priority must be one of low, normal, high, urgent"
	}

	status := req.Status
	if status == "" {
		status = "open"
	}
	if !validStatuses[status] {
		return nil, "status must be one of open, in_progress, done, archived"
	}

	var dueAt *time.Time
	if req.DueAt != nil && *req.DueAt != "" {
		t, err := time.Parse(time.RFC3339, *req.DueAt)
		if err != nil {
			return nil, "due_at must be an RFC3339 timestamp"
		}
		dueAt = &t
	}

	return &models.Process{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		CompanyID:   req.CompanyID,
		AssigneeID:  req.AssigneeID,
		Priority:    priority,
		Status:      status,
		DueAt:       dueAt,
	}, ""
}

// CreateProcess handles POST /processes
func (s *Server) CreateProcess(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: err.Error()})
		return
	}

	process, problem := processFromRequest(&req)
	if problem != "" {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: problem})
		return
	}

	if err := s.processes.Create(c.Request.Context(), process); err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to create process"})
		return
	}

	s.hub.NotifyStateChanged()
	c.JSON(http.StatusCreated, process)
}

// ListProcesses handles GET /processes
func (s *Server) ListProcesses(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	processes, err := s.processes.List(c.Request.Context(), offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to list processes"})
		return
	}
	c.JSON(http.StatusOK, processes)
}

// GetProcess handles GET /processes/:id
func (s *Server) GetProcess(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_uuid", ErrorDescription: "Invalid UUID format"})
		return
	}

	process, err := s.processes.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, Error{Error: "not_found", ErrorDescription: "Process not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to load process"})
		return
	}
	c.JSON(http.StatusOK, process)
}

// UpdateProcess handles PUT /processes/:id
func (s *Server) UpdateProcess(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_uuid", ErrorDescription: "Invalid UUID format"})
		return
	}

	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: err.Error()})
		return
	}

	process, problem := processFromRequest(&req)
	if problem != "" {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: problem})
		return
	}
	process.ID = id

	err := s.processes.Update(c.Request.Context(), process)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, Error{Error: "not_found", ErrorDescription: "Process not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to update process"})
		return
	}

	s.hub.NotifyStateChanged()
	c.JSON(http.StatusOK, process)
}

// DeleteProcess handles DELETE /processes/:id
func (s *Server) DeleteProcess(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_uuid", ErrorDescription: "Invalid UUID format"})
		return
	}

	err := s.processes.Delete(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, Error{Error: "not_found", ErrorDescription: "Process not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to delete process"})
		return
	}

	s.hub.NotifyStateChanged()
	c.Status(http.StatusNoContent)
}
