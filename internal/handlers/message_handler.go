package handlers

import (
	"net/http"

	"github.com/eventzone/booking-backend/internal/middleware"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MessageHandler handles coordinator chat and customer feedback
type MessageHandler struct {
	messages *services.MessageService
	logger   logrus.FieldLogger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messages *services.MessageService, logger logrus.FieldLogger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

// ChatHistory handles GET /api/chat/:id
func (h *MessageHandler) ChatHistory(c *gin.Context) {
	coordinatorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	messages, err := h.messages.ChatHistory(c.Request.Context(), coordinatorID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}

// PostChat handles POST /api/chat/:id
func (h *MessageHandler) PostChat(c *gin.Context) {
	coordinatorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req models.ChatRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.messages.PostChat(c.Request.Context(), coordinatorID, req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SubmitFeedback handles POST /api/feedback. Callers without a customer token submit anonymously.
func (h *MessageHandler) SubmitFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	var userID *int64
	if userCtx, ok := middleware.GetUserContext(c); ok && !userCtx.IsAdmin() {
		userID = &userCtx.UserID
	}

	id, err := h.messages.SubmitFeedback(c.Request.Context(), userID, req.Message)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Thanks for your feedback!",
		"feedback_id": id,
	})
}
