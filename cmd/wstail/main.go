// wstail connects to a running ingester's broadcast server and streams
// events to the console.
// Usage: go run ./cmd/wstail --addr ws://localhost:8765/ --secret "$NEWSWIRE_WS_SECRET"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"newswire/internal/model"
)

func main() {
	addr := flag.String("addr", "ws://localhost:8765/", "broadcast server URL")
	secret := flag.String("secret", os.Getenv("NEWSWIRE_WS_SECRET"), "shared secret")
	verbose := flag.Bool("verbose", false, "print full event JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, *addr, nil)
	if err != nil {
		logger.Error("failed to connect", "addr", *addr, "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	// The first frame authenticates; a wrong secret gets the connection
	// closed without a reply.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(*secret)); err != nil {
		logger.Error("failed to send secret", "error", err)
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	logger.Info("streaming started - press Ctrl+C to stop", "addr", *addr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("shutdown complete")
				return
			}
			logger.Error("connection closed", "error", err)
			os.Exit(1)
		}

		if *verbose {
			var pretty json.RawMessage = data
			out, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Printf("%s\n", out)
			continue
		}

		var evt struct {
			Type string                     `json:"type"`
			Data map[string]json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &evt); err != nil {
			logger.Warn("unparsable frame", "error", err)
			continue
		}

		switch evt.Type {
		case model.EventTypeItem:
			fmt.Printf("[ITEM] title=%s link=%s impact=%s\n",
				evt.Data["title"], evt.Data["link"], evt.Data["impact_importance"])
		case model.EventTypeSentiment:
			fmt.Printf("[SENTIMENT] entity=%s sentiment=%s movement=%s certainty=%s\n",
				evt.Data["entity_name"], evt.Data["sentiment_score"],
				evt.Data["movement_score"], evt.Data["certainty"])
		default:
			fmt.Printf("[%s] %s\n", evt.Type, data)
		}
	}
}
