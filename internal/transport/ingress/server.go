// Package ingress implements the EA-facing websocket listener of
// spec.md §1/§6.1: gorilla/websocket, binary frames, one message per
// frame. Chosen over raw TCP framing because EAs run gorilla/websocket
// client libraries on the MT4/MT5 side already.
package ingress

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/aristath/tradecopy-relay/internal/handlers"
	"github.com/aristath/tradecopy-relay/internal/wire"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true }, // EAs are not browsers; no CORS concern.
}

// Server accepts inbound EA connections and hands decoded frames to a
// handlers.Dispatcher.
type Server struct {
	Dispatcher *handlers.Dispatcher
	Log        zerolog.Logger

	// PongWait bounds how long a connection may go without a pong before
	// it's considered dead at the transport level; the registry's own
	// heartbeat timeout (spec.md §4.13) is the domain-level liveness
	// check and runs independently of this.
	PongWait time.Duration
}

// New builds an ingress Server. pongWait <= 0 defaults to 60s.
func New(dispatcher *handlers.Dispatcher, log zerolog.Logger, pongWait time.Duration) *Server {
	if pongWait <= 0 {
		pongWait = 60 * time.Second
	}
	return &Server{Dispatcher: dispatcher, Log: log.With().Str("component", "ingress").Logger(), PongWait: pongWait}
}

// ServeHTTP upgrades the request to a websocket and reads binary frames
// from it until the connection closes. Implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(s.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.PongWait))
		return nil
	})

	ctx := r.Context()
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			s.Log.Debug().Err(err).Msg("connection closed")
			return
		}
		if msgType != websocket.BinaryMessage {
			continue // spec.md §6.1: EA frames are binary MessagePack only.
		}

		decoded, err := wire.Decode(data)
		if err != nil {
			s.Log.Info().Err(err).Msg("dropping unreadable frame")
			continue
		}
		s.Dispatcher.Dispatch(ctx, decoded)
	}
}

// WriteFrame encodes v to MessagePack and writes it as a single binary
// frame on conn. Nothing in the module calls it; outbound messages go
// through internal/publisher.
func WriteFrame(conn *websocket.Conn, v interface{}) error {
	data, err := wire.Encode(v)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}
