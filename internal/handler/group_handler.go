package handler

import (
	"net/http"

	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/berlincodez/Campus-Skill-link/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GroupHandler interface {
	UpdateGroup(c *gin.Context)
}

type groupHandler struct {
	service *service.GroupService
	logger  *zap.Logger
}

func NewGroupHandler(service *service.GroupService, logger *zap.Logger) GroupHandler {
	return &groupHandler{
		service: service,
		logger:  logger,
	}
}

// UpdateGroup runs join, approve and reject actions
// @Router /api/study-groups/{id} [patch]
func (h *groupHandler) UpdateGroup(c *gin.Context) {
	var in model.GroupActionInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.logger, err)
		return
	}

	chatID, err := h.service.Handle(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	body := gin.H{"success": true}
	if chatID != "" {
		body["chatId"] = chatID
	}
	c.JSON(http.StatusOK, body)
}
