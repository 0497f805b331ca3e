package broadcast

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

// Hub upgrades UI clients to nhooyr.io/websocket connections and fans
// Channel's published strings out to all of them, per spec.md §6.3. Each
// connection gets its own buffered subscription so one slow UI tab
// cannot stall the others (spec.md §9).
type Hub struct {
	channel *Channel
	log     zerolog.Logger
}

// NewHub wraps channel for HTTP-facing websocket delivery.
func NewHub(channel *Channel, log zerolog.Logger) *Hub {
	return &Hub{channel: channel, log: log.With().Str("component", "broadcast.hub").Logger()}
}

// ServeHTTP upgrades the request and streams every Channel publish to it
// until the client disconnects. Implements http.Handler.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	msgs, unsubscribe := h.channel.Subscribe(64)
	defer unsubscribe()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "client disconnected")
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, []byte(msg))
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("websocket write failed, dropping client")
				return
			}
		case <-heartbeat.C:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, []byte("heartbeat:"+time.Now().UTC().Format(time.RFC3339)))
			cancel()
			if err != nil {
				return
			}
		}
	}
}
