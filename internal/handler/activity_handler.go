package handler

import (
	"net/http"

	"github.com/berlincodez/Campus-Skill-link/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ActivityHandler interface {
	GetActivities(c *gin.Context)
}

type activityHandler struct {
	recorder *service.ActivityRecorder
	logger   *zap.Logger
}

func NewActivityHandler(recorder *service.ActivityRecorder, logger *zap.Logger) ActivityHandler {
	return &activityHandler{
		recorder: recorder,
		logger:   logger,
	}
}

func (h *activityHandler) GetActivities(c *gin.Context) {
	rows, err := h.recorder.List(c.Request.Context(), c.Query("userId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": rows})
}
