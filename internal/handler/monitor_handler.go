package handler

import (
	"net/http"

	"github.com/berlincodez/Campus-Skill-link/internal/hub"
	"github.com/gin-gonic/gin"
)

type MonitorHandler interface {
	GetHubStats(c *gin.Context)
}

type monitorHandler struct {
	monitorService *hub.MonitorService
}

func NewMonitorHandler(monitorService *hub.MonitorService) MonitorHandler {
	return &monitorHandler{
		monitorService: monitorService,
	}
}

// GetHubStats reports live subscribers, optionally narrowed to one thread room
// @Produce json
// @Success 200 {object} model.MonitorResponse
// @Router /api/monitor/stats [get]
func (h *monitorHandler) GetHubStats(c *gin.Context) {
	if connectionID := c.Query("connectionId"); connectionID != "" {
		c.JSON(http.StatusOK, h.monitorService.GetRoomStats(connectionID))
		return
	}
	c.JSON(http.StatusOK, h.monitorService.GetStats())
}
