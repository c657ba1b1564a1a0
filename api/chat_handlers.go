package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetConversation handles GET /messages/:other, the refetch path clients use
// after reconnecting. Returns the full history between the authenticated user
// and the other party, ordered for display.
func (s *Server) GetConversation(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, Error{Error: "unauthorized", ErrorDescription: "User not authenticated"})
		return
	}

	otherID := c.Param("other")
	if otherID == "" {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid_input", ErrorDescription: "Missing conversation partner"})
		return
	}

	messages, err := s.messages.Conversation(c.Request.Context(), userID, otherID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, Error{Error: "storage_unavailable", ErrorDescription: "Failed to load conversation"})
		return
	}
	if messages == nil {
		messages = []Message{}
	}
	c.JSON(http.StatusOK, messages)
}

// GetPresence handles GET /presence, the online-user set over REST
func (s *Server) GetPresence(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"users":       s.hub.Registry().Snapshot(),
		"connections": s.hub.ConnectionCount(),
	})
}
