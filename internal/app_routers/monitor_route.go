package approuters

import (
	"github.com/fayyozbobokulov/workplace-connect-server/internal/configuration"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/handler"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/hub"

	"github.com/gin-gonic/gin"
)

// MonitorRouters sets up monitoring API routes
func MonitorRouters(router *gin.Engine, container *configuration.Container) {
	monitorService := hub.NewMonitorService(container.Hub)
	monitorHandler := handler.NewMonitorHandler(monitorService)

	monitorGroup := router.Group("/api/monitor")
	{
		monitorGroup.GET("/stats", monitorHandler.GetHubStats)
	}
}
