package webui

import (
	"net/http"

	"github.com/gorilla/websocket"
)

//nolint:gochecknoglobals // Upgrader is stateless configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		// The server binds to localhost by default; cross-origin pages
		// on the same machine are acceptable.
		return true
	},
}

// handleWebSocket implements GET /ws. Each connection receives the full
// event history of the current session followed by live events, every
// subscriber in identical order.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	bus := s.manager.Bus()
	if bus == nil {
		http.Error(w, "No active session", http.StatusNotFound)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer ws.Close()
	s.logger.Debug("websocket client connected: %s", r.RemoteAddr)

	ch, unsubscribe := bus.Subscribe(true)
	defer unsubscribe()

	// Drain reads so close frames are processed; the client never sends
	// application messages.
	go func() {
		for {
			if _, _, readErr := ws.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	for event := range ch {
		if err := ws.WriteJSON(&event); err != nil {
			s.logger.Debug("websocket client disconnected: %v", err)
			return
		}
	}
}
