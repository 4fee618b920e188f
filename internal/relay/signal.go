package relay

// SignalKind describes what an inbound control message asks the relay to do.
type SignalKind int

const (
	// SignalTypingStart notifies the target that the sender started typing.
	SignalTypingStart SignalKind = iota
	// SignalTypingStop notifies the target that the sender stopped typing.
	SignalTypingStop
	// SignalDelivered acknowledges that a message reached the sender's device.
	SignalDelivered
	// SignalSeen acknowledges that a message was read.
	SignalSeen
	// SignalCallOffer starts a call: the offer is relayed to the target.
	SignalCallOffer
	// SignalCallAnswer accepts a call: the answer is relayed back.
	SignalCallAnswer
	// SignalCallCandidate relays an ICE candidate to the target.
	SignalCallCandidate
	// SignalCallEnd hangs up or rejects a call.
	SignalCallEnd
	// SignalCallToggle reports a muted or unmuted media track.
	SignalCallToggle
)

// Signal is one inbound control message, already decoded from the wire.
// The sender is never part of the signal: the relay stamps the sending
// connection's bound identity on whatever it forwards.
type Signal struct {
	Kind      SignalKind
	To        string
	MessageID int64
	Call      *CallPayload
}
