package handler

import (
	"net/http"

	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/berlincodez/Campus-Skill-link/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConnectionHandler interface {
	CreateConnection(c *gin.Context)
	GetConnections(c *gin.Context)
	UpdateConnection(c *gin.Context)
}

type connectionHandler struct {
	service *service.ConnectionService
	logger  *zap.Logger
}

func NewConnectionHandler(service *service.ConnectionService, logger *zap.Logger) ConnectionHandler {
	return &connectionHandler{
		service: service,
		logger:  logger,
	}
}

func (h *connectionHandler) CreateConnection(c *gin.Context) {
	var in model.AcceptPostInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.logger, err)
		return
	}

	conn, err := h.service.AcceptPost(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"connectionId": conn.ID.Hex(),
	})
}

func (h *connectionHandler) GetConnections(c *gin.Context) {
	conns, err := h.service.ListConnections(c.Request.Context(), c.Query("userId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connections": conns,
	})
}

func (h *connectionHandler) UpdateConnection(c *gin.Context) {
	var in model.UpdateStatusInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.logger, err)
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), in); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
