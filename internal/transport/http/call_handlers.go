package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vishnuvardhan833199/chattify/internal/relay"
	"github.com/vishnuvardhan833199/chattify/internal/service/calls"
	"github.com/vishnuvardhan833199/chattify/internal/store"
)

// CallSessions answers active-call queries. Satisfied by relay.Relay.
type CallSessions interface {
	ActiveCall(identity string) (relay.CallSession, bool)
}

// CallHandlers provides HTTP handlers for the call-history log.
type CallHandlers struct {
	calls    *calls.Service
	sessions CallSessions
	log      *zerolog.Logger
}

// NewCallHandlers creates a new call handlers instance.
func NewCallHandlers(callSvc *calls.Service, sessions CallSessions, logger *zerolog.Logger) *CallHandlers {
	return &CallHandlers{
		calls:    callSvc,
		sessions: sessions,
		log:      logger,
	}
}

// StartCallRequest represents the call-start request body.
type StartCallRequest struct {
	To        int64  `json:"to" binding:"required"`
	MediaType string `json:"mediaType" binding:"required"`
}

// FinishCallRequest represents the call-finish request body.
type FinishCallRequest struct {
	Status string `json:"status"`
}

// CallResponse represents a call record in API responses.
type CallResponse struct {
	ID         string `json:"id"`
	CallerID   int64  `json:"callerId"`
	CalleeID   int64  `json:"calleeId"`
	MediaType  string `json:"mediaType"`
	Status     string `json:"status"`
	StartedAt  int64  `json:"startedAt"`
	EndedAt    *int64 `json:"endedAt,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

func callResponse(call *store.Call) CallResponse {
	resp := CallResponse{
		ID:         call.ID,
		CallerID:   call.CallerID,
		CalleeID:   call.CalleeID,
		MediaType:  string(call.MediaType),
		Status:     string(call.Status),
		StartedAt:  call.StartedAt.Unix(),
		DurationMs: call.DurationMs,
	}
	if call.EndedAt != nil {
		ended := call.EndedAt.Unix()
		resp.EndedAt = &ended
	}
	return resp
}

// Start logs the beginning of a call.
// POST /api/calls
func (h *CallHandlers) Start(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req StartCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	call, err := h.calls.Start(c.Request.Context(), userID, req.To, store.MediaType(req.MediaType))
	if err != nil {
		switch {
		case errors.Is(err, calls.ErrCannotCallSelf), errors.Is(err, calls.ErrInvalidMediaType):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, calls.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		default:
			h.log.Error().Err(err).Int64("caller", userID).Msg("failed to log call")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, callResponse(call))
}

// Finish closes a call record.
// POST /api/calls/:id/finish
func (h *CallHandlers) Finish(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req FinishCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	call, err := h.calls.Finish(c.Request.Context(), c.Param("id"), userID, store.CallStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, calls.ErrCallNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "call not found"})
		case errors.Is(err, calls.ErrNotParticipant):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "not a participant"})
		case errors.Is(err, calls.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid call status"})
		default:
			h.log.Error().Err(err).Str("call_id", c.Param("id")).Msg("failed to finish call")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, callResponse(call))
}

// History returns the user's recent calls, newest first.
// GET /api/calls
func (h *CallHandlers) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	records, err := h.calls.History(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to load call history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]CallResponse, 0, len(records))
	for i := range records {
		resp = append(resp, callResponse(&records[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// ActiveCallResponse describes the user's live call, if any.
type ActiveCallResponse struct {
	Peer      string `json:"peer"`
	State     string `json:"state"`
	MediaType string `json:"mediaType"`
	StartedAt int64  `json:"startedAt"`
}

// Active reports the relay's view of the user's current call.
// GET /api/calls/active
func (h *CallHandlers) Active(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	sess, ok := h.sessions.ActiveCall(strconv.FormatInt(userID, 10))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"active": nil})
		return
	}

	state := "offering"
	if sess.State == relay.CallConnected {
		state = "connected"
	}
	c.JSON(http.StatusOK, gin.H{"active": ActiveCallResponse{
		Peer:      sess.Peer,
		State:     state,
		MediaType: sess.MediaType,
		StartedAt: sess.StartedAt.Unix(),
	}})
}
