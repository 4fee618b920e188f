package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vishnuvardhan833199/chattify/internal/media"
	"github.com/vishnuvardhan833199/chattify/internal/service/messages"
	"github.com/vishnuvardhan833199/chattify/internal/store"
)

// Presence answers online-status queries. Satisfied by relay.Relay.
type Presence interface {
	OnlineIdentities() []string
}

// UserHandlers provides HTTP handlers for user operations.
type UserHandlers struct {
	messages *messages.Service
	users    store.UserStore
	media    *media.Store
	presence Presence
	log      *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(msgSvc *messages.Service, users store.UserStore, mediaStore *media.Store, presence Presence, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		messages: msgSvc,
		users:    users,
		media:    mediaStore,
		presence: presence,
		log:      logger,
	}
}

// List returns every other user for the contact sidebar.
// GET /api/users
func (h *UserHandlers) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	users, err := h.messages.Contacts(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, userResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Online returns the identities currently connected to the relay. Clients
// mostly learn this over the WebSocket broadcast; this endpoint serves
// the initial page load.
// GET /api/users/online
func (h *UserHandlers) Online(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": h.presence.OnlineIdentities()})
}

// UpdateAvatarRequest carries a base64 data URL with the new avatar image.
type UpdateAvatarRequest struct {
	ProfilePic string `json:"profilePic" binding:"required"`
}

// UpdateAvatar stores a new avatar image and updates the user's profile.
// PUT /api/users/avatar
func (h *UserHandlers) UpdateAvatar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req UpdateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	url, err := h.media.SaveDataURL(req.ProfilePic)
	if err != nil {
		h.log.Debug().Err(err).Msg("invalid avatar upload")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image data"})
		return
	}

	if err := h.users.UpdateAvatar(c.Request.Context(), userID, url); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to update avatar")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}
