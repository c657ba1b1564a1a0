package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/procboard/procboard/internal/config"
	"gorm.io/gorm"
)

// Server is the main API server instance
type Server struct {
	config *config.Config

	// Realtime layer
	hub    *ChatHub
	router *MessageRouter

	// Stores
	processes  ProcessStore
	users      UserStore
	categories CategoryStore
	companies  CompanyStore
	settings   SettingsStore
	messages   MessageStore
}

// NewServer creates a new API server instance over an open database handle
func NewServer(cfg *config.Config, db *gorm.DB) *Server {
	registry := NewConnectionRegistry()
	hub := NewChatHub(registry)
	messages := NewGormMessageStore(db)

	return &Server{
		config:     cfg,
		hub:        hub,
		router:     NewMessageRouter(messages, hub),
		processes:  NewGormProcessStore(db),
		users:      NewGormUserStore(db),
		categories: NewGormCategoryStore(db),
		companies:  NewGormCompanyStore(db),
		settings:   NewGormSettingsStore(db),
		messages:   messages,
	}
}

// Hub returns the realtime hub (used by admin handlers and tests)
func (s *Server) Hub() *ChatHub {
	return s.hub
}

// RegisterHandlers registers all routes with the router
func (s *Server) RegisterHandlers(r *gin.Engine) {
	r.GET("/healthz", s.GetHealthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := r.Group("/", JWTMiddleware(s.config.Auth.JWT.Secret))

	authed.GET("/ws", s.HandleChatWebSocket)

	authed.POST("/processes", s.CreateProcess)
	authed.GET("/processes", s.ListProcesses)
	authed.GET("/processes/:id", s.GetProcess)
	authed.PUT("/processes/:id", s.UpdateProcess)
	authed.DELETE("/processes/:id", s.DeleteProcess)

	authed.POST("/users", s.CreateUser)
	authed.GET("/users", s.ListUsers)
	authed.GET("/users/:id", s.GetUser)
	authed.PUT("/users/:id", s.UpdateUser)
	authed.DELETE("/users/:id", s.DeleteUser)

	authed.POST("/categories", s.CreateCategory)
	authed.GET("/categories", s.ListCategories)
	authed.PUT("/categories/:id", s.UpdateCategory)
	authed.DELETE("/categories/:id", s.DeleteCategory)

	authed.POST("/companies", s.CreateCompany)
	authed.GET("/companies", s.ListCompanies)
	authed.PUT("/companies/:id", s.UpdateCompany)
	authed.DELETE("/companies/:id", s.DeleteCompany)

	authed.GET("/settings", s.GetSettings)
	authed.PUT("/settings", s.UpdateSettings)

	authed.GET("/messages/:other", s.GetConversation)
	authed.GET("/presence", s.GetPresence)
}

// GetHealthz reports liveness
func (s *Server) GetHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
