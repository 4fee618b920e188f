package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vishnuvardhan833199/chattify/internal/auth"
	"github.com/vishnuvardhan833199/chattify/internal/config"
	"github.com/vishnuvardhan833199/chattify/internal/media"
	"github.com/vishnuvardhan833199/chattify/internal/proto"
	"github.com/vishnuvardhan833199/chattify/internal/relay"
	"github.com/vishnuvardhan833199/chattify/internal/service/calls"
	"github.com/vishnuvardhan833199/chattify/internal/service/messages"
	"github.com/vishnuvardhan833199/chattify/internal/store"
	"github.com/vishnuvardhan833199/chattify/internal/store/sqlite"
)

// testEnv runs the whole server against an in-memory store, so tests can
// exercise the REST API and the WebSocket endpoint exactly as a client would.
type testEnv struct {
	srv   *httptest.Server
	store store.Store
	auth  *auth.Service
	relay *relay.Relay
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	mediaStore, err := media.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("media store: %v", err)
	}

	logger := zerolog.Nop()
	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "chattify",
		Audience: "chattify-client",
		TTL:      time.Hour,
	})

	r := relay.New(&logger)
	msgSvc := messages.New(st, mediaStore, r, &logger)
	callSvc := calls.New(st, &logger)

	cfg := config.Default()
	httpSrv := NewServer(r, authService, st, msgSvc, callSvc, mediaStore, &cfg, &logger)

	srv := httptest.NewServer(httpSrv.Handler)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, store: st, auth: authService, relay: r}
}

// registerUser creates an account through the auth service and returns the
// stored user and a token valid for the test server.
func (e *testEnv) registerUser(t *testing.T, email, name string) (*store.User, string) {
	t.Helper()
	u, token, err := e.auth.Register(context.Background(), email, name, "password123")
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u, token
}

// dialWS opens a WebSocket connection against the test server. An empty token
// yields an anonymous connection.
func (e *testEnv) dialWS(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	url := strings.Replace(e.srv.URL, "http", "ws", 1) + "/ws"
	if token != "" {
		url += "?token=" + token
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "test done") })
	return conn
}

// wsEnvelope mirrors proto.Outbound with the payload left raw for per-event
// decoding.
type wsEnvelope struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

// readUntilEvent keeps reading envelopes until one with the wanted event name
// arrives. Presence broadcasts interleave freely with forwarded signals, so
// tests skip past what they are not asserting on.
func readUntilEvent(t *testing.T, conn *websocket.Conn, event string) wsEnvelope {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		var env wsEnvelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			t.Fatalf("waiting for %q: %v", event, err)
		}
		if env.Event == event {
			return env
		}
	}
}

// readUntilPresence reads until a presence broadcast carrying exactly the
// wanted identities arrives.
func readUntilPresence(t *testing.T, conn *websocket.Conn, want []string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		var env wsEnvelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			t.Fatalf("waiting for presence %v: %v", want, err)
		}
		if env.Event != proto.EventOnlineUsers {
			continue
		}
		var users []string
		if err := json.Unmarshal(env.Data, &users); err != nil {
			t.Fatalf("decode presence: %v", err)
		}
		if equalStrings(users, want) {
			return
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sendInbound(t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal inbound data: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: raw}); err != nil {
		t.Fatalf("write inbound: %v", err)
	}
}

// doJSON performs an authenticated JSON request against the test server.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *stdhttp.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := stdhttp.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *stdhttp.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func identity(u *store.User) string {
	return fmt.Sprintf("%d", u.ID)
}
