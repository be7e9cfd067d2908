package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"crypto-advisor/internal/logging"
	"crypto-advisor/internal/stream"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingPeriod   = 50 * time.Second
)

// wsMessage is one push to a WebSocket client: the event that caused it and
// the state after it.
type wsMessage struct {
	Event *stream.Event `json:"event,omitempty"`
	State stateResponse `json:"state"`
}

// handleWebSocket pushes the current state on connect and again after
// every change event until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	subID, events := s.orch.Subscribe()
	defer s.orch.Unsubscribe(subID)

	logger := logging.FromContext(r.Context()).With().Str("subscriber", subID).Str("remote", r.RemoteAddr).Logger()
	logger.Info().Msg("WebSocket client connected")
	defer logger.Info().Msg("WebSocket client disconnected")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Warn().Err(err).Msg("Unexpected WebSocket closure")
				}
				return
			}
		}
	}()

	write := func(msg wsMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			logger.Debug().Err(err).Msg("WebSocket write failed")
			return false
		}
		return true
	}

	if !write(wsMessage{State: s.renderState(s.orch.State())}) {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case e, ok := <-events:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if !write(wsMessage{Event: &e, State: s.renderState(s.orch.State())}) {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
