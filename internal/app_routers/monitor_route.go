package approuters

import (
	"github.com/berlincodez/Campus-Skill-link/internal/configuration"
	"github.com/berlincodez/Campus-Skill-link/internal/handler"
	"github.com/berlincodez/Campus-Skill-link/internal/hub"

	"github.com/gin-gonic/gin"
)

// MonitorRouters exposes subscriber counts per connection room.
func MonitorRouters(router *gin.Engine, container *configuration.Container) {
	stats := handler.NewMonitorHandler(hub.NewMonitorService(container.Hub))
	router.GET("/api/monitor/stats", stats.GetHubStats)
}
