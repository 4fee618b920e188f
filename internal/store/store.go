package store

import (
	"context"
	"time"
)

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	AvatarURL    string
	CreatedAt    time.Time
}

// Message is a persisted direct message between two users. ImageURL is the
// public path of an uploaded attachment, empty for text-only messages.
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Text       string
	ImageURL   string
	CreatedAt  time.Time
}

// MediaType defines the media of a call.
type MediaType string

const (
	MediaTypeAudio MediaType = "audio"
	MediaTypeVideo MediaType = "video"
)

// CallStatus defines the state of a call record.
type CallStatus string

const (
	CallStatusOngoing  CallStatus = "ongoing"
	CallStatusEnded    CallStatus = "ended"
	CallStatusRejected CallStatus = "rejected"
	CallStatusMissed   CallStatus = "missed"
)

// Call is a call-history record. Signaling itself is never persisted; this
// is only the log shown in the clients' call history view.
type Call struct {
	ID         string // UUID
	CallerID   int64
	CalleeID   int64
	MediaType  MediaType
	Status     CallStatus
	StartedAt  time.Time
	EndedAt    *time.Time
	DurationMs int64
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new account with a pre-hashed password.
	CreateUser(ctx context.Context, email, passwordHash, fullName string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsersExcept returns everyone but the given user, for the contact
	// sidebar.
	ListUsersExcept(ctx context.Context, userID int64) ([]User, error)

	// UpdateAvatar replaces the user's avatar URL.
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a message and returns it with ID and
	// timestamp filled in.
	CreateMessage(ctx context.Context, msg *Message) (*Message, error)

	// ListConversation returns all messages between the two users, oldest
	// first.
	ListConversation(ctx context.Context, userA, userB int64) ([]Message, error)
}

// CallStore handles call-history persistence.
type CallStore interface {
	// CreateCall creates a new call record.
	CreateCall(ctx context.Context, call *Call) error

	// GetCall retrieves a call by ID.
	GetCall(ctx context.Context, id string) (*Call, error)

	// FinishCall sets the terminal status, end time and duration.
	FinishCall(ctx context.Context, id string, status CallStatus, endedAt time.Time, durationMs int64) error

	// ListCallsForUser returns the user's call history, newest first,
	// capped at limit.
	ListCallsForUser(ctx context.Context, userID int64, limit int) ([]Call, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore
	CallStore

	// Close closes the underlying database connection.
	Close() error
}
