package relay

// Conn is one live client connection as seen by the relay. A user with
// several tabs or devices open holds one Conn per tab.
//
// Identity is bound once when the connection is attached and never changes.
// An empty identity marks the connection as anonymous: it cannot be resolved
// as a sender and is not reachable by identity, but it still receives
// presence broadcasts.
type Conn struct {
	ID       string
	Identity string
	Events   chan *Event
}

// NewConn constructs a connection handle with a buffered event channel.
func NewConn(id, identity string) *Conn {
	return &Conn{
		ID:       id,
		Identity: identity,
		Events:   make(chan *Event, 32),
	}
}

// send enqueues an event without blocking. The Events channel is never
// closed: when a connection's write loop has exited the channel simply stops
// draining and further events land here in the default branch. That keeps
// concurrent delivery safe against connections tearing down mid-forward.
func (c *Conn) send(ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
