package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SmaylovSerikbay/locals-sub000/internal/dto"
	apierrors "github.com/SmaylovSerikbay/locals-sub000/internal/errors"
	"github.com/SmaylovSerikbay/locals-sub000/internal/services"
)

// MessageHandler handles chat message requests
type MessageHandler struct {
	messages *services.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// ListMessages handles GET /messages?item_id=...
func (h *MessageHandler) ListMessages(c *gin.Context) {
	itemID := c.Query("item_id")
	if itemID == "" {
		apierrors.BadRequest(c, "item_id is required")
		return
	}

	messages, err := h.messages.List(itemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.MessageDTO, len(messages))
	for i, m := range messages {
		out[i] = dto.ToMessageDTO(m)
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

// CreateMessage handles POST /messages
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	var req struct {
		ItemID   string `json:"item_id" binding:"required"`
		SenderID uint64 `json:"sender_id" binding:"required"`
		Text     string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	message, err := h.messages.Append(c.Request.Context(), req.ItemID, req.SenderID, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageDTO(*message))
}
