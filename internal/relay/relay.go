package relay

import (
	"sync"

	"github.com/rs/zerolog"
)

// Relay tracks who is connected and forwards control messages between them.
// It owns the identity directory, the set of attached connections (anonymous
// ones included), and the active call sessions.
//
// All delivery is best effort and at most once: forwarding to an identity
// with no live connections is a silent no-op, and there is no queuing or
// acknowledgment. A stale presence indicator is harmless; the clients
// reconcile over the REST API.
type Relay struct {
	dir      *Directory
	sessions *callSessions
	log      *zerolog.Logger

	mu    sync.Mutex
	conns map[*Conn]struct{}
}

// New constructs a relay with an empty directory.
func New(logger *zerolog.Logger) *Relay {
	return &Relay{
		dir:      NewDirectory(),
		sessions: newCallSessions(),
		log:      logger,
		conns:    make(map[*Conn]struct{}),
	}
}

// Attach registers a freshly accepted connection. Identified connections
// enter the directory and trigger a presence broadcast to every attached
// connection; anonymous ones only join the broadcast audience.
func (r *Relay) Attach(c *Conn) {
	r.mu.Lock()
	r.conns[c] = struct{}{}
	r.mu.Unlock()

	if c.Identity == "" {
		r.log.Debug().Str("conn_id", c.ID).Msg("anonymous connection attached")
		return
	}

	r.dir.Register(c)
	r.log.Debug().Str("conn_id", c.ID).Str("user", c.Identity).Msg("connection attached")
	r.broadcastPresence()
}

// Detach removes a closed connection. When the last connection of an
// identity goes away its active call, if any, is ended toward the peer and
// the shrunken presence set is broadcast.
func (r *Relay) Detach(c *Conn) {
	r.mu.Lock()
	delete(r.conns, c)
	r.mu.Unlock()

	if c.Identity == "" {
		return
	}

	r.dir.Deregister(c)
	if !r.dir.IsOnline(c.Identity) {
		if peer, ok := r.sessions.end(c.Identity); ok {
			r.Forward(peer, &Event{
				Kind: EventCallEnd,
				From: c.Identity,
				Call: &CallPayload{Reason: "disconnected"},
			})
		}
	}

	r.log.Debug().Str("conn_id", c.ID).Str("user", c.Identity).Msg("connection detached")
	r.broadcastPresence()
}

// Forward delivers the event to every live connection of the target
// identity, independently and without blocking. Unknown identities are a
// silent no-op.
func (r *Relay) Forward(to string, ev *Event) {
	for _, c := range r.dir.Lookup(to) {
		c.send(ev)
	}
}

// BroadcastAll delivers the event to every attached connection regardless of
// identity.
func (r *Relay) BroadcastAll(ev *Event) {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	for _, c := range conns {
		c.send(ev)
	}
}

// IsOnline reports whether the identity has at least one live connection.
// Used by the messaging service to decide whether a live push is worth
// attempting alongside persistence.
func (r *Relay) IsOnline(identity string) bool {
	return r.dir.IsOnline(identity)
}

// OnlineIdentities returns the current presence set, sorted.
func (r *Relay) OnlineIdentities() []string {
	return r.dir.Identities()
}

// ActiveCall returns the identity's call session, if one is live.
func (r *Relay) ActiveCall(identity string) (CallSession, bool) {
	return r.sessions.active(identity)
}

// HandleSignal applies the forwarding rules for one inbound control message.
// The sender identity is always the connection's bound identity; nothing the
// payload claims about the sender is trusted. A missing target makes the
// signal a no-op, matching the rest of the best-effort model.
func (r *Relay) HandleSignal(c *Conn, sig Signal) {
	if sig.To == "" {
		return
	}
	from := c.Identity

	switch sig.Kind {
	case SignalTypingStart:
		r.Forward(sig.To, &Event{Kind: EventTyping, From: from})
	case SignalTypingStop:
		r.Forward(sig.To, &Event{Kind: EventStopTyping, From: from})
	case SignalDelivered:
		r.Forward(sig.To, &Event{Kind: EventMessageDelivered, From: from, MessageID: sig.MessageID})
	case SignalSeen:
		r.Forward(sig.To, &Event{Kind: EventMessageSeen, From: from, MessageID: sig.MessageID})
	case SignalCallOffer:
		call := callOrEmpty(sig.Call)
		if from != "" {
			r.sessions.begin(from, sig.To, call.MediaType)
		}
		r.Forward(sig.To, &Event{Kind: EventCallIncoming, From: from, Call: call})
	case SignalCallAnswer:
		if from != "" {
			r.sessions.connect(from)
		}
		r.Forward(sig.To, &Event{Kind: EventCallAnswer, From: from, Call: callOrEmpty(sig.Call)})
	case SignalCallCandidate:
		r.Forward(sig.To, &Event{Kind: EventCallCandidate, From: from, Call: callOrEmpty(sig.Call)})
	case SignalCallEnd:
		if from != "" {
			r.sessions.end(from)
		}
		r.Forward(sig.To, &Event{Kind: EventCallEnd, From: from, Call: callOrEmpty(sig.Call)})
	case SignalCallToggle:
		r.Forward(sig.To, &Event{Kind: EventCallToggle, From: from, Call: callOrEmpty(sig.Call)})
	default:
		r.log.Debug().Int("kind", int(sig.Kind)).Msg("unknown signal dropped")
	}
}

func (r *Relay) broadcastPresence() {
	r.BroadcastAll(&Event{Kind: EventOnlineUsers, Users: r.dir.Identities()})
}

func callOrEmpty(p *CallPayload) *CallPayload {
	if p == nil {
		return &CallPayload{}
	}
	return p
}
