package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vishnuvardhan833199/chattify/internal/proto"
)

// ws_probe is a manual smoke client for the relay: it connects with an
// optional token, prints everything the server pushes, and can poke a peer
// with a typing indicator.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_probe: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", "", "JWT to authenticate with; empty connects anonymously")
	typingTo := flag.String("typing-to", "", "user ID to send a typing indicator to")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	url := *addr
	if *token != "" {
		url += "?token=" + *token
	}

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if *typingTo != "" {
		payload, err := json.Marshal(proto.TypingData{To: *typingTo})
		if err != nil {
			return fmt.Errorf("marshal typing: %w", err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeTypingStart, Data: payload}); err != nil {
			return fmt.Errorf("send typing: %w", err)
		}
		log.Printf("sent typing-start to %s", *typingTo)
	}

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		raw, _ := json.Marshal(outbound)
		log.Printf("<- %s", raw)
	}
}
