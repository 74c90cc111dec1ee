// Package transport adapts the persistent push channel to the engine's
// entry points. Reconnection and backoff policy belong to the caller.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"github.com/itxrex07/x/internal/observability"
	"github.com/itxrex07/x/internal/realtime"
)

// Frame kinds delivered by the push channel.
const (
	frameWelcome = "welcome"
	framePush    = "push"
)

// frame is one websocket message from the push channel.
type frame struct {
	Type    string          `json:"type"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Feed reads frames from the push channel and forwards them to the engine.
type Feed struct {
	engine *realtime.Engine
	conn   *websocket.Conn
	connID string
}

// Dial opens the push channel. The welcome frame sent after the server has
// accepted the session raises the engine's readiness edge.
func Dial(ctx context.Context, url, token string, engine *realtime.Engine) (*Feed, error) {
	ctx, span := otel.Tracer("x/transport").Start(ctx, "feed.dial")
	defer span.End()

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial feed: %w", err)
	}

	feed := &Feed{engine: engine, conn: conn, connID: uuid.NewString()}
	log.Printf("feed connected conn_id=%s url=%s", feed.connID, url)
	return feed, nil
}

// Run reads frames until the connection or context ends. Buffering before
// the welcome frame is the engine's concern, not the transport's.
func (f *Feed) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		f.conn.Close()
	}()

	for {
		_, data, err := f.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read feed: %w", err)
		}

		var fr frame
		if err := json.Unmarshal(data, &fr); err != nil {
			observability.IncFeedFrame("malformed")
			log.Printf("feed frame decode failed conn_id=%s: %v", f.connID, err)
			continue
		}

		switch fr.Type {
		case frameWelcome:
			observability.IncFeedFrame("welcome")
			f.engine.SetReady()
		case framePush:
			observability.IncFeedFrame("push")
			f.engine.HandlePush(fr.Payload)
		default:
			observability.IncFeedFrame("realtime")
			f.engine.HandleRealtime(fr.Topic, fr.Payload)
		}
	}
}

// Close tears down the channel.
func (f *Feed) Close() error {
	return f.conn.Close()
}
