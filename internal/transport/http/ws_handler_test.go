package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vishnuvardhan833199/chattify/internal/proto"
)

func TestWSPresenceLifecycle(t *testing.T) {
	env := newTestEnv(t)
	u1, token1 := env.registerUser(t, "alice@example.com", "Alice")
	u2, token2 := env.registerUser(t, "bob@example.com", "Bob")

	ws1 := env.dialWS(t, token1)
	readUntilPresence(t, ws1, []string{identity(u1)})

	ws2 := env.dialWS(t, token2)
	readUntilPresence(t, ws1, []string{identity(u1), identity(u2)})
	readUntilPresence(t, ws2, []string{identity(u1), identity(u2)})

	ws2.Close(websocket.StatusNormalClosure, "leaving")
	readUntilPresence(t, ws1, []string{identity(u1)})
}

func TestWSSecondTabKeepsUserOnline(t *testing.T) {
	env := newTestEnv(t)
	u1, token1 := env.registerUser(t, "alice@example.com", "Alice")
	u2, token2 := env.registerUser(t, "bob@example.com", "Bob")

	watcher := env.dialWS(t, token2)

	tab1 := env.dialWS(t, token1)
	tab2 := env.dialWS(t, token1)
	readUntilPresence(t, watcher, []string{identity(u1), identity(u2)})

	// Closing one tab must not take the user offline.
	tab1.Close(websocket.StatusNormalClosure, "tab closed")
	readUntilPresence(t, watcher, []string{identity(u1), identity(u2)})

	tab2.Close(websocket.StatusNormalClosure, "tab closed")
	readUntilPresence(t, watcher, []string{identity(u2)})
}

func TestWSAnonymousSeesPresence(t *testing.T) {
	env := newTestEnv(t)
	u1, token1 := env.registerUser(t, "alice@example.com", "Alice")

	anon := env.dialWS(t, "")
	env.dialWS(t, token1)

	// The anonymous viewer hears about the identified attach but never
	// appears in the set itself.
	readUntilPresence(t, anon, []string{identity(u1)})
}

func TestWSTypingAndReceipts(t *testing.T) {
	env := newTestEnv(t)
	u1, token1 := env.registerUser(t, "alice@example.com", "Alice")
	u2, token2 := env.registerUser(t, "bob@example.com", "Bob")

	ws1 := env.dialWS(t, token1)
	ws2 := env.dialWS(t, token2)
	readUntilPresence(t, ws2, []string{identity(u1), identity(u2)})

	sendInbound(t, ws1, proto.InboundTypeTypingStart, proto.TypingData{To: identity(u2)})
	env1 := readUntilEvent(t, ws2, proto.EventTyping)
	var typing proto.TypingEvent
	if err := json.Unmarshal(env1.Data, &typing); err != nil {
		t.Fatalf("decode typing: %v", err)
	}
	if typing.From != identity(u1) {
		t.Fatalf("typing from %q, want %q", typing.From, identity(u1))
	}

	sendInbound(t, ws1, proto.InboundTypeTypingStop, proto.TypingData{To: identity(u2)})
	readUntilEvent(t, ws2, proto.EventStopTyping)

	sendInbound(t, ws2, proto.InboundTypeDelivered, proto.ReceiptData{To: identity(u1), MessageID: 42})
	env2 := readUntilEvent(t, ws1, proto.EventMessageDelivered)
	var receipt proto.ReceiptEvent
	if err := json.Unmarshal(env2.Data, &receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if receipt.MessageID != 42 || receipt.From != identity(u2) {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	sendInbound(t, ws2, proto.InboundTypeSeen, proto.ReceiptData{To: identity(u1), MessageID: 42})
	readUntilEvent(t, ws1, proto.EventMessageSeen)
}

func TestWSCallSignaling(t *testing.T) {
	env := newTestEnv(t)
	u1, token1 := env.registerUser(t, "alice@example.com", "Alice")
	u2, token2 := env.registerUser(t, "bob@example.com", "Bob")

	ws1 := env.dialWS(t, token1)
	ws2 := env.dialWS(t, token2)
	readUntilPresence(t, ws2, []string{identity(u1), identity(u2)})

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	sendInbound(t, ws1, proto.InboundTypeCallOffer, proto.CallOfferData{
		To: identity(u2), Offer: offer, MediaType: "video",
	})

	incomingEnv := readUntilEvent(t, ws2, proto.EventCallIncoming)
	var incoming proto.CallIncomingEvent
	if err := json.Unmarshal(incomingEnv.Data, &incoming); err != nil {
		t.Fatalf("decode incoming: %v", err)
	}
	if incoming.From != identity(u1) || incoming.MediaType != "video" || string(incoming.Offer) != string(offer) {
		t.Fatalf("unexpected incoming call: %+v", incoming)
	}

	answer := json.RawMessage(`{"type":"answer","sdp":"v=0"}`)
	sendInbound(t, ws2, proto.InboundTypeCallAnswer, proto.CallAnswerData{To: identity(u1), Answer: answer})

	answerEnv := readUntilEvent(t, ws1, proto.EventCallAnswer)
	var answered proto.CallAnswerEvent
	if err := json.Unmarshal(answerEnv.Data, &answered); err != nil {
		t.Fatalf("decode answer: %v", err)
	}
	if answered.From != identity(u2) || string(answered.Answer) != string(answer) {
		t.Fatalf("unexpected answer: %+v", answered)
	}

	candidate := json.RawMessage(`{"candidate":"candidate:0 1 UDP"}`)
	sendInbound(t, ws1, proto.InboundTypeCallCandidate, proto.CallCandidateData{To: identity(u2), Candidate: candidate})
	candEnv := readUntilEvent(t, ws2, proto.EventCallCandidate)
	var cand proto.CallCandidateEvent
	if err := json.Unmarshal(candEnv.Data, &cand); err != nil {
		t.Fatalf("decode candidate: %v", err)
	}
	if string(cand.Candidate) != string(candidate) {
		t.Fatalf("candidate mangled: %s", cand.Candidate)
	}

	sendInbound(t, ws2, proto.InboundTypeCallToggle, proto.CallToggleData{To: identity(u1), Kind: "audio", Enabled: false})
	toggleEnv := readUntilEvent(t, ws1, proto.EventCallToggle)
	var toggle proto.CallToggleEvent
	if err := json.Unmarshal(toggleEnv.Data, &toggle); err != nil {
		t.Fatalf("decode toggle: %v", err)
	}
	if toggle.Kind != "audio" || toggle.Enabled {
		t.Fatalf("unexpected toggle: %+v", toggle)
	}

	sendInbound(t, ws1, proto.InboundTypeCallEnd, proto.CallEndData{To: identity(u2), Reason: "hangup"})
	endEnv := readUntilEvent(t, ws2, proto.EventCallEnd)
	var end proto.CallEndEvent
	if err := json.Unmarshal(endEnv.Data, &end); err != nil {
		t.Fatalf("decode end: %v", err)
	}
	if end.From != identity(u1) || end.Reason != "hangup" {
		t.Fatalf("unexpected end: %+v", end)
	}
}

func TestWSDisconnectEndsCall(t *testing.T) {
	env := newTestEnv(t)
	u1, token1 := env.registerUser(t, "alice@example.com", "Alice")
	u2, token2 := env.registerUser(t, "bob@example.com", "Bob")

	ws1 := env.dialWS(t, token1)
	ws2 := env.dialWS(t, token2)
	readUntilPresence(t, ws2, []string{identity(u1), identity(u2)})

	sendInbound(t, ws1, proto.InboundTypeCallOffer, proto.CallOfferData{
		To: identity(u2), Offer: json.RawMessage(`{"sdp":"v=0"}`), MediaType: "audio",
	})
	readUntilEvent(t, ws2, proto.EventCallIncoming)

	// Dropping the caller's only connection must hang up toward the callee.
	ws1.Close(websocket.StatusNormalClosure, "gone")

	endEnv := readUntilEvent(t, ws2, proto.EventCallEnd)
	var end proto.CallEndEvent
	if err := json.Unmarshal(endEnv.Data, &end); err != nil {
		t.Fatalf("decode end: %v", err)
	}
	if end.From != identity(u1) || end.Reason != "disconnected" {
		t.Fatalf("unexpected end: %+v", end)
	}

	readUntilPresence(t, ws2, []string{identity(u2)})
}

func TestWSSignalToOfflineUserIsDropped(t *testing.T) {
	env := newTestEnv(t)
	u1, token1 := env.registerUser(t, "alice@example.com", "Alice")

	ws1 := env.dialWS(t, token1)
	readUntilPresence(t, ws1, []string{identity(u1)})

	sendInbound(t, ws1, proto.InboundTypeCallOffer, proto.CallOfferData{
		To: "999", Offer: json.RawMessage(`{"sdp":"v=0"}`), MediaType: "video",
	})

	// Connection stays healthy: a self-addressed signal still round-trips.
	sendInbound(t, ws1, proto.InboundTypeTypingStart, proto.TypingData{To: identity(u1)})
	env1 := readUntilEvent(t, ws1, proto.EventTyping)
	var typing proto.TypingEvent
	if err := json.Unmarshal(env1.Data, &typing); err != nil {
		t.Fatalf("decode typing: %v", err)
	}
	if typing.From != identity(u1) {
		t.Fatalf("unexpected sender: %q", typing.From)
	}
}

func TestWSUnknownInboundTypeGetsError(t *testing.T) {
	env := newTestEnv(t)
	_, token1 := env.registerUser(t, "alice@example.com", "Alice")

	ws1 := env.dialWS(t, token1)

	sendInbound(t, ws1, "bogus-type", proto.TypingData{To: "1"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		var env1 wsEnvelope
		if err := wsjson.Read(ctx, ws1, &env1); err != nil {
			t.Fatalf("waiting for error envelope: %v", err)
		}
		if env1.Type != proto.OutboundTypeError {
			continue
		}
		if env1.Error == nil || env1.Error.Code != "invalid_message" {
			t.Fatalf("unexpected error envelope: %+v", env1)
		}
		return
	}
}

func TestWSNewMessagePush(t *testing.T) {
	env := newTestEnv(t)
	u1, token1 := env.registerUser(t, "alice@example.com", "Alice")
	u2, token2 := env.registerUser(t, "bob@example.com", "Bob")

	ws2 := env.dialWS(t, token2)
	readUntilPresence(t, ws2, []string{identity(u2)})

	resp := env.doJSON(t, "POST", "/api/messages/"+identity(u2), token1, map[string]string{"text": "hello there"})
	if resp.StatusCode != 201 {
		t.Fatalf("send message status: %d", resp.StatusCode)
	}

	pushEnv := readUntilEvent(t, ws2, proto.EventNewMessage)
	var msg proto.MessagePayload
	if err := json.Unmarshal(pushEnv.Data, &msg); err != nil {
		t.Fatalf("decode pushed message: %v", err)
	}
	if msg.SenderID != u1.ID || msg.ReceiverID != u2.ID || msg.Text != "hello there" {
		t.Fatalf("unexpected pushed message: %+v", msg)
	}
}
