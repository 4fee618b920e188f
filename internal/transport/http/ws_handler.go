package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vishnuvardhan833199/chattify/internal/auth"
	"github.com/vishnuvardhan833199/chattify/internal/proto"
	"github.com/vishnuvardhan833199/chattify/internal/relay"
	"github.com/vishnuvardhan833199/chattify/internal/utils"
)

// WSHandler upgrades HTTP connections and bridges them to relay.Conn.
type WSHandler struct {
	relay       *relay.Relay
	authService *auth.Service
	signalLimit int
	log         *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(r *relay.Relay, authService *auth.Service, signalLimit int, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{relay: r, authService: authService, signalLimit: signalLimit, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	identity := h.resolveIdentity(r)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := relay.NewConn(utils.NewID(), identity)
	h.relay.Attach(client)
	defer h.relay.Detach(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan struct{})
	defer close(stop)

	limiter := newRateLimiter(h.signalLimit)
	limiter.startReset(stop)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// resolveIdentity binds the connection to the user claimed by a valid token
// in the handshake. A missing or unparseable token degrades the connection
// to anonymous rather than rejecting it: an unauthenticated viewer still
// receives presence updates, it just cannot send or be addressed.
func (h *WSHandler) resolveIdentity(r *stdhttp.Request) string {
	token := r.URL.Query().Get("token")
	if token == "" {
		return ""
	}
	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		h.log.Debug().Err(err).Msg("ws handshake token rejected, continuing anonymous")
		return ""
	}
	return strconv.FormatInt(claims.UserID, 10)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *relay.Conn, limiter *rateLimiter) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		if !limiter.allow() {
			h.log.Debug().Str("conn_id", client.ID).Msg("signal rate limit exceeded, dropping")
			continue
		}

		sig, protoErr, err := inboundToSignal(inbound)
		if err != nil {
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("failed to map inbound")
			return err
		}
		if protoErr != nil {
			if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: protoErr,
			}); writeErr != nil {
				return writeErr
			}
			continue
		}
		if sig != nil {
			h.relay.HandleSignal(client, *sig)
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *relay.Conn) error {
	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
