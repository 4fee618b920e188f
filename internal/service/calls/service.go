package calls

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vishnuvardhan833199/chattify/internal/store"
)

// Common errors for call-history operations.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCallNotFound     = errors.New("call not found")
	ErrNotParticipant   = errors.New("not a participant in this call")
	ErrCannotCallSelf   = errors.New("cannot call yourself")
	ErrInvalidMediaType = errors.New("invalid media type")
	ErrInvalidStatus    = errors.New("invalid call status")
)

const historyLimit = 100

// Service keeps the call-history log. The actual call negotiation happens
// peer to peer through the relay; this service only records what the
// clients report about their calls.
type Service struct {
	store store.Store
	log   *zerolog.Logger
}

// New creates a new call-history service.
func New(st store.Store, logger *zerolog.Logger) *Service {
	return &Service{
		store: st,
		log:   logger,
	}
}

// Start logs the beginning of a call and returns the record.
func (s *Service) Start(ctx context.Context, callerID, calleeID int64, mediaType store.MediaType) (*store.Call, error) {
	if callerID == calleeID {
		return nil, ErrCannotCallSelf
	}
	if mediaType != store.MediaTypeAudio && mediaType != store.MediaTypeVideo {
		return nil, ErrInvalidMediaType
	}
	if _, err := s.store.GetUserByID(ctx, calleeID); err != nil {
		return nil, ErrUserNotFound
	}

	call := &store.Call{
		ID:        uuid.New().String(),
		CallerID:  callerID,
		CalleeID:  calleeID,
		MediaType: mediaType,
		Status:    store.CallStatusOngoing,
		StartedAt: time.Now(),
	}
	if err := s.store.CreateCall(ctx, call); err != nil {
		return nil, fmt.Errorf("create call: %w", err)
	}

	s.log.Debug().Str("call_id", call.ID).Int64("caller", callerID).Int64("callee", calleeID).Msg("call started")
	return call, nil
}

// Finish closes a call record with the given terminal status. Only a
// participant may finish a call; an empty status defaults to "ended".
func (s *Service) Finish(ctx context.Context, callID string, userID int64, status store.CallStatus) (*store.Call, error) {
	call, err := s.store.GetCall(ctx, callID)
	if err != nil {
		return nil, ErrCallNotFound
	}
	if call.CallerID != userID && call.CalleeID != userID {
		return nil, ErrNotParticipant
	}

	switch status {
	case "":
		status = store.CallStatusEnded
	case store.CallStatusEnded, store.CallStatusRejected, store.CallStatusMissed:
	default:
		return nil, ErrInvalidStatus
	}

	endedAt := time.Now()
	durationMs := endedAt.Sub(call.StartedAt).Milliseconds()
	if durationMs < 0 {
		durationMs = 0
	}

	if err := s.store.FinishCall(ctx, callID, status, endedAt, durationMs); err != nil {
		return nil, fmt.Errorf("finish call: %w", err)
	}

	return s.store.GetCall(ctx, callID)
}

// History returns the user's recent calls, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]store.Call, error) {
	return s.store.ListCallsForUser(ctx, userID, historyLimit)
}
