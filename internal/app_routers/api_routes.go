package approuters

import (
	"net/http"

	"github.com/berlincodez/Campus-Skill-link/internal/configuration"
	"github.com/gin-gonic/gin"
)

func MessagingRouters(router *gin.Engine, container *configuration.Container) {
	api := router.Group("/api")
	{
		api.GET("/conversations", container.MessagingHandler.GetConversations)

		api.GET("/messages", container.MessagingHandler.GetMessages)
		api.POST("/messages", container.MessagingHandler.SendMessage)
		api.PATCH("/messages", container.MessagingHandler.MarkRead)

		api.POST("/connections", container.ConnectionHandler.CreateConnection)
		api.GET("/connections", container.ConnectionHandler.GetConnections)
		api.PATCH("/connections/:id", container.ConnectionHandler.UpdateConnection)

		api.PATCH("/study-groups/:id", container.GroupHandler.UpdateGroup)

		api.GET("/activities", container.ActivityHandler.GetActivities)

		api.GET("/client-config", clientConfig(container.Config))
	}
}

// clientConfig tells polling clients how often to refresh.
func clientConfig(cfg configuration.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"inboxIntervalMs":  cfg.Poll.InboxInterval.Milliseconds(),
			"threadIntervalMs": cfg.Poll.ThreadInterval.Milliseconds(),
			"socketPort":       cfg.Server.SocketPort,
			"socketRoute":      cfg.Server.SocketRoute,
		})
	}
}
