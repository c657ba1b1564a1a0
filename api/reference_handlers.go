package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/procboard/procboard/api/models"
)

// Handlers for the category, company and settings reference data. Every
// successful mutation triggers exactly one invalidation broadcast.

// CreateCategory handles POST /categories
func (s *Server) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: err.Error()})
		return
	}

	category := &models.Category{Name: req.Name}
	if err := s.categories.Create(c.Request.Context(), category); err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to create category"})
		return
	}

	s.hub.NotifyStateChanged()
	c.JSON(http.StatusCreated, category)
}

// ListCategories handles GET /categories
func (s *Server) ListCategories(c *gin.Context) {
	categories, err := s.categories.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// UpdateCategory handles PUT /categories/:id
func (s *Server) UpdateCategory(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_uuid", ErrorDescription: "Invalid UUID format"})
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: err.Error()})
		return
	}

	category := &models.Category{ID: id, Name: req.Name}
	err := s.categories.Update(c.Request.Context(), category)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, Error{Error: "not_found", ErrorDescription: "Category not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to update category"})
		return
	}

	s.hub.NotifyStateChanged()
	c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /categories/:id
func (s *Server) DeleteCategory(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_uuid", ErrorDescription: "Invalid UUID format"})
		return
	}

	err := s.categories.Delete(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, Error{Error: "not_found", ErrorDescription: "Category not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to delete category"})
		return
	}

	s.hub.NotifyStateChanged()
	c.Status(http.StatusNoContent)
}

// CreateCompany handles POST /companies
func (s *Server) CreateCompany(c *gin.Context) {
	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: err.Error()})
		return
	}

	company := &models.Company{Name: req.Name, Location: req.Location}
	if err := s.companies.Create(c.Request.Context(), company); err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to create company"})
		return
	}

	s.hub.NotifyStateChanged()
	c.JSON(http.StatusCreated, company)
}

// ListCompanies handles GET /companies
func (s *Server) ListCompanies(c *gin.Context) {
	companies, err := s.companies.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to list companies"})
		return
	}
	c.JSON(http.StatusOK, companies)
}

// UpdateCompany handles PUT /companies/:id
func (s *Server) UpdateCompany(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_uuid", ErrorDescription: "Invalid UUID format"})
		return
	}

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: err.Error()})
		return
	}

	company := &models.Company{ID: id, Name: req.Name, Location: req.Location}
	err := s.companies.Update(c.Request.Context(), company)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, Error{Error: "not_found", ErrorDescription: "Company not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to update company"})
		return
	}

	s.hub.NotifyStateChanged()
	c.JSON(http.StatusOK, company)
}

// DeleteCompany handles DELETE /companies/:id
func (s *Server) DeleteCompany(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_uuid", ErrorDescription: "Invalid UUID format"})
		return
	}

	err := s.companies.Delete(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, Error{Error: "not_found", ErrorDescription: "Company not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to delete company"})
		return
	}

	s.hub.NotifyStateChanged()
	c.Status(http.StatusNoContent)
}

// GetSettings handles GET /settings
func (s *Server) GetSettings(c *gin.Context) {
	settings, err := s.settings.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /settings
func (s *Server) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: err.Error()})
		return
	}

	settings := &models.Settings{
		AppName:           req.AppName,
		AllowRegistration: req.AllowRegistration,
		RetentionDays:     req.RetentionDays,
	}
	if err := s.settings.Update(c.Request.Context(), settings); err != nil {
		c.JSON(http.StatusInternalServerError, Error{Error: "internal_error", ErrorDescription: "Failed to update settings"})
		return
	}

	s.hub.NotifyStateChanged()
	c.JSON(http.StatusOK, settings)
}
