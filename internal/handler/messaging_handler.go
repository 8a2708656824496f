package handler

import (
	"net/http"

	"github.com/berlincodez/Campus-Skill-link/internal/model"
	"github.com/berlincodez/Campus-Skill-link/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MessagingHandler interface {
	GetConversations(c *gin.Context)
	GetMessages(c *gin.Context)
	SendMessage(c *gin.Context)
	MarkRead(c *gin.Context)
}

type messagingHandler struct {
	aggregator *service.ConversationAggregator
	messages   *service.MessageService
	readState  *service.ReadStateTracker
	logger     *zap.Logger
}

func NewMessagingHandler(aggregator *service.ConversationAggregator, messages *service.MessageService, readState *service.ReadStateTracker, logger *zap.Logger) MessagingHandler {
	return &messagingHandler{
		aggregator: aggregator,
		messages:   messages,
		readState:  readState,
		logger:     logger,
	}
}

// GetConversations returns the inbox of a user
// @Router /api/conversations [get]
func (h *messagingHandler) GetConversations(c *gin.Context) {
	convs, err := h.aggregator.Conversations(c.Request.Context(), c.Query("userId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": convs,
	})
}

// GetMessages returns a thread in ascending order
// @Router /api/messages [get]
func (h *messagingHandler) GetMessages(c *gin.Context) {
	msgs, err := h.messages.List(c.Request.Context(), c.Query("connectionId"), c.Query("userId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": msgs,
	})
}

// @Router /api/messages [post]
func (h *messagingHandler) SendMessage(c *gin.Context) {
	var in model.SendMessageInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.logger, err)
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msg,
	})
}

// @Router /api/messages [patch]
func (h *messagingHandler) MarkRead(c *gin.Context) {
	var in model.MarkReadInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, h.logger, err)
		return
	}

	res, err := h.readState.MarkThreadRead(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"modifiedCount": res.ModifiedCount,
	})
}
