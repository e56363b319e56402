package approuters

import (
	"github.com/fayyozbobokulov/workplace-connect-server/internal/configuration"

	"github.com/gin-gonic/gin"
)

// PresenceRouters sets up the presence and unread-count API routes
func PresenceRouters(router *gin.Engine, container *configuration.Container) {
	userRoute := router.Group("/api/users")
	{
		userRoute.GET("/online", container.PresenceHandler.GetOnlineUsers)
		userRoute.GET("/:userId/status", container.PresenceHandler.GetUserStatus)
		userRoute.GET("/:userId/unread", container.PresenceHandler.GetUnreadCounts)
	}
}
