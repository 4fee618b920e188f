package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound message types. Each addresses a target user in its payload; the
// server works out the sender from the connection itself.
const (
	InboundTypeTypingStart   = "typing-start"
	InboundTypeTypingStop    = "typing-stop"
	InboundTypeDelivered     = "message-delivered"
	InboundTypeSeen          = "message-seen"
	InboundTypeCallOffer     = "call-offer"
	InboundTypeCallAnswer    = "call-answer"
	InboundTypeCallCandidate = "call-ice-candidate"
	InboundTypeCallEnd       = "call-end"
	InboundTypeCallToggle    = "call-toggle"
)

// Outbound envelope types.
const (
	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Outbound event names.
const (
	EventOnlineUsers      = "online-users-changed"
	EventTyping           = "typing"
	EventStopTyping       = "stopTyping"
	EventMessageDelivered = "message:delivered"
	EventMessageSeen      = "message:seen"
	EventCallIncoming     = "call:incoming"
	EventCallAnswer       = "call:answer"
	EventCallCandidate    = "call:ice-candidate"
	EventCallEnd          = "call:end"
	EventCallToggle       = "call:toggle"
	EventNewMessage       = "newMessage"
)

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// TypingData addresses a typing indicator.
type TypingData struct {
	To string `json:"to"`
}

// ReceiptData addresses a delivery or read receipt for one message.
type ReceiptData struct {
	To        string `json:"to"`
	MessageID int64  `json:"messageId"`
}

// CallOfferData starts a call. Offer is the WebRTC session description,
// opaque to the server.
type CallOfferData struct {
	To        string          `json:"to"`
	Offer     json.RawMessage `json:"offer"`
	MediaType string          `json:"mediaType"`
}

// CallAnswerData accepts a call.
type CallAnswerData struct {
	To     string          `json:"to"`
	Answer json.RawMessage `json:"answer"`
}

// CallCandidateData relays one ICE candidate.
type CallCandidateData struct {
	To        string          `json:"to"`
	Candidate json.RawMessage `json:"candidate"`
}

// CallEndData hangs up or rejects a call.
type CallEndData struct {
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

// CallToggleData reports a muted or unmuted media track.
type CallToggleData struct {
	To      string `json:"to"`
	Kind    string `json:"kind"`
	Enabled bool   `json:"enabled"`
}

// TypingEvent is forwarded to the typing indicator's target.
type TypingEvent struct {
	From string `json:"from"`
}

// ReceiptEvent is forwarded to a receipt's target.
type ReceiptEvent struct {
	MessageID int64  `json:"messageId"`
	From      string `json:"from"`
}

// CallIncomingEvent delivers an offer to the callee.
type CallIncomingEvent struct {
	From      string          `json:"from"`
	Offer     json.RawMessage `json:"offer"`
	MediaType string          `json:"mediaType"`
}

// CallAnswerEvent delivers an answer to the caller.
type CallAnswerEvent struct {
	From   string          `json:"from"`
	Answer json.RawMessage `json:"answer"`
}

// CallCandidateEvent delivers an ICE candidate to the peer.
type CallCandidateEvent struct {
	From      string          `json:"from"`
	Candidate json.RawMessage `json:"candidate"`
}

// CallEndEvent tells the peer the call is over.
type CallEndEvent struct {
	From   string `json:"from"`
	Reason string `json:"reason,omitempty"`
}

// CallToggleEvent tells the peer a media track was toggled.
type CallToggleEvent struct {
	From    string `json:"from"`
	Kind    string `json:"kind"`
	Enabled bool   `json:"enabled"`
}

// MessagePayload is a persisted chat message as it appears on the wire,
// both in REST responses and in the newMessage push event.
type MessagePayload struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	Text       string `json:"text,omitempty"`
	Image      string `json:"image,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
