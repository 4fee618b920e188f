package messages

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/vishnuvardhan833199/chattify/internal/media"
	"github.com/vishnuvardhan833199/chattify/internal/relay"
	"github.com/vishnuvardhan833199/chattify/internal/store"
)

var (
	// ErrEmptyMessage is returned when a message has neither text nor image.
	ErrEmptyMessage = errors.New("message content is required")
	// ErrReceiverNotFound is returned when the target user doesn't exist.
	ErrReceiverNotFound = errors.New("receiver not found")
)

// Live pushes events to connected clients, best effort. Satisfied by
// relay.Relay.
type Live interface {
	IsOnline(identity string) bool
	Forward(to string, ev *relay.Event)
}

// Service provides direct-messaging business logic.
type Service struct {
	store store.Store
	media *media.Store
	live  Live
	log   *zerolog.Logger
}

// New creates a new messaging service. live may be nil when no relay is
// running (tests of pure persistence).
func New(st store.Store, mediaStore *media.Store, live Live, logger *zerolog.Logger) *Service {
	return &Service{
		store: st,
		media: mediaStore,
		live:  live,
		log:   logger,
	}
}

// Send persists a direct message, storing its attachment first, then pushes
// it to the receiver's live connections when online. The push is fire and
// forget; an offline receiver fetches the conversation over REST later.
func (s *Service) Send(ctx context.Context, senderID, receiverID int64, text, image string) (*store.Message, error) {
	if text == "" && image == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := s.store.GetUserByID(ctx, receiverID); err != nil {
		return nil, ErrReceiverNotFound
	}

	imageURL := ""
	if image != "" {
		url, err := s.media.SaveDataURL(image)
		if err != nil {
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		imageURL = url
	}

	msg, err := s.store.CreateMessage(ctx, &store.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		ImageURL:   imageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if s.live != nil {
		to := strconv.FormatInt(receiverID, 10)
		if s.live.IsOnline(to) {
			s.live.Forward(to, &relay.Event{
				Kind:    relay.EventNewMessage,
				From:    strconv.FormatInt(senderID, 10),
				Message: msg,
			})
			s.log.Debug().Int64("message_id", msg.ID).Str("to", to).Msg("message pushed live")
		}
	}

	return msg, nil
}

// Conversation returns all messages between the two users, oldest first.
func (s *Service) Conversation(ctx context.Context, userA, userB int64) ([]store.Message, error) {
	return s.store.ListConversation(ctx, userA, userB)
}

// Contacts returns every other user, for the sidebar.
func (s *Service) Contacts(ctx context.Context, userID int64) ([]store.User, error) {
	return s.store.ListUsersExcept(ctx, userID)
}
