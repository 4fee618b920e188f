package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vishnuvardhan833199/chattify/internal/proto"
	"github.com/vishnuvardhan833199/chattify/internal/service/messages"
)

// MessageHandlers provides HTTP handlers for direct messages.
type MessageHandlers struct {
	messages *messages.Service
	log      *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(msgSvc *messages.Service, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		messages: msgSvc,
		log:      logger,
	}
}

// SendMessageRequest represents the send-message request body. Image is a
// base64 data URL when present.
type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// Send persists a message to the user in the path and pushes it live when
// the receiver is connected.
// POST /api/messages/:id
func (h *MessageHandlers) Send(c *gin.Context) {
	senderID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	receiverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), senderID, receiverID, req.Text, req.Image)
	if err != nil {
		switch {
		case errors.Is(err, messages.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message content is required"})
		case errors.Is(err, messages.ErrReceiverNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "receiver not found"})
		default:
			h.log.Error().Err(err).Int64("sender", senderID).Msg("failed to send message")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, messagePayload(msg))
}

// Conversation returns all messages exchanged with the user in the path,
// oldest first.
// GET /api/messages/:id
func (h *MessageHandlers) Conversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	otherID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	msgs, err := h.messages.Conversation(c.Request.Context(), userID, otherID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to load conversation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]proto.MessagePayload, 0, len(msgs))
	for i := range msgs {
		resp = append(resp, messagePayload(&msgs[i]))
	}
	c.JSON(http.StatusOK, resp)
}
