package relay

import (
	"sync"
	"time"
)

// CallState tags the progress of a one-to-one call as seen by the relay.
type CallState int

const (
	// CallOffering means an offer was relayed and no answer has come back.
	CallOffering CallState = iota
	// CallConnected means the callee answered.
	CallConnected
)

// CallSession is the relay's view of one side of an active call.
type CallSession struct {
	Peer      string
	State     CallState
	MediaType string
	StartedAt time.Time
}

// callSessions tracks active calls per identity. Each call occupies two
// entries, one per party, kept in step so either side can be looked up.
// Sessions exist only while the signaling suggests a call is live; they
// carry no media and are dropped on hang-up or disconnect.
type callSessions struct {
	mu     sync.Mutex
	byUser map[string]*CallSession
}

func newCallSessions() *callSessions {
	return &callSessions{byUser: make(map[string]*CallSession)}
}

// begin records an offered call between caller and callee, replacing any
// previous session either party had.
func (s *callSessions) begin(caller, callee, mediaType string) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byUser[caller] = &CallSession{Peer: callee, State: CallOffering, MediaType: mediaType, StartedAt: now}
	s.byUser[callee] = &CallSession{Peer: caller, State: CallOffering, MediaType: mediaType, StartedAt: now}
}

// connect marks the identity's call, and its peer's, as answered.
func (s *callSessions) connect(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byUser[identity]
	if !ok {
		return
	}
	sess.State = CallConnected
	if peer, ok := s.byUser[sess.Peer]; ok && peer.Peer == identity {
		peer.State = CallConnected
	}
}

// end removes the identity's call session and its peer's mirror entry.
// Returns the peer identity when a session existed.
func (s *callSessions) end(identity string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byUser[identity]
	if !ok {
		return "", false
	}
	delete(s.byUser, identity)
	if peer, ok := s.byUser[sess.Peer]; ok && peer.Peer == identity {
		delete(s.byUser, sess.Peer)
	}
	return sess.Peer, true
}

// active returns a copy of the identity's current call session, if any.
func (s *callSessions) active(identity string) (CallSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byUser[identity]
	if !ok {
		return CallSession{}, false
	}
	return *sess, true
}
