package handler

import (
	"net/http"

	"github.com/fayyozbobokulov/workplace-connect-server/internal/hub"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/repo"

	"github.com/gin-gonic/gin"
)

// PresenceHandler exposes the hub's presence queries and unread counts over REST
type PresenceHandler interface {
	GetOnlineUsers(c *gin.Context)
	GetUserStatus(c *gin.Context)
	GetUnreadCounts(c *gin.Context)
}

type presenceHandler struct {
	hub      *hub.Hub
	messages repo.MessageRepository
}

func NewPresenceHandler(h *hub.Hub, messages repo.MessageRepository) PresenceHandler {
	return &presenceHandler{
		hub:      h,
		messages: messages,
	}
}

func (h *presenceHandler) GetOnlineUsers(c *gin.Context) {
	users := h.hub.OnlineUsers()

	c.JSON(http.StatusOK, gin.H{
		"count": len(users),
		"users": users,
	})
}

func (h *presenceHandler) GetUserStatus(c *gin.Context) {
	userID := c.Param("userId")

	status := hub.StatusOffline
	if h.hub.IsUserOnline(userID) {
		status = hub.StatusOnline
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": userID,
		"status": status,
	})
}

func (h *presenceHandler) GetUnreadCounts(c *gin.Context) {
	userID := c.Param("userId")

	counts, err := h.messages.UnreadCounts(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get unread counts",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": userID,
		"unread": counts,
	})
}
