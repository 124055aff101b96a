package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/motorides/dispatch/internal/api/dto"
	"github.com/motorides/dispatch/internal/service/chat"
)

// ChatHistory handles GET /chat/:rideId/messages
func (h *Handlers) ChatHistory(c *gin.Context) {
	msgs, err := h.Chat.History(c.Request.Context(), c.Param("rideId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

// SendChat handles POST /chat/send
func (h *Handlers) SendChat(c *gin.Context) {
	var req dto.SendChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "rideId, senderId and message are required"})
		return
	}

	if err := h.Chat.Send(c.Request.Context(), req.RideID, req.SenderID, req.Message); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
