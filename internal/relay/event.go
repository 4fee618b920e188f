package relay

import (
	"encoding/json"

	"github.com/vishnuvardhan833199/chattify/internal/store"
)

// EventKind is a notification the relay delivers to connections.
type EventKind int

const (
	// EventOnlineUsers carries the full set of online identities. Sent to
	// every connection whenever the set changes.
	EventOnlineUsers EventKind = iota
	// EventTyping tells the recipient that someone started typing to them.
	EventTyping
	// EventStopTyping tells the recipient that typing stopped.
	EventStopTyping
	// EventMessageDelivered is a delivery receipt for a chat message.
	EventMessageDelivered
	// EventMessageSeen is a read receipt for a chat message.
	EventMessageSeen
	// EventCallIncoming delivers a WebRTC offer to the callee.
	EventCallIncoming
	// EventCallAnswer delivers the callee's answer back to the caller.
	EventCallAnswer
	// EventCallCandidate relays an ICE candidate between call peers.
	EventCallCandidate
	// EventCallEnd tells the peer the call is over.
	EventCallEnd
	// EventCallToggle tells the peer a media track was muted or unmuted.
	EventCallToggle
	// EventNewMessage pushes a freshly persisted chat message to the
	// recipient's live connections.
	EventNewMessage
)

// Event describes what happened to the receiving connection. Which fields
// are set depends on Kind.
type Event struct {
	Kind      EventKind
	Users     []string       // EventOnlineUsers
	From      string         // sender identity for forwarded signals
	MessageID int64          // delivery and read receipts
	Call      *CallPayload   // call signaling events
	Message   *store.Message // EventNewMessage
}

// CallPayload carries the negotiation data relayed between call peers. The
// offer, answer and candidate blobs are opaque to the relay; their semantics
// belong to the clients' WebRTC stacks.
type CallPayload struct {
	Offer     json.RawMessage
	Answer    json.RawMessage
	Candidate json.RawMessage
	MediaType string
	Reason    string
	Track     string
	Enabled   bool
}
