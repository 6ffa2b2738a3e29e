// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/okian/encore/internal/adapters/watch"
	"github.com/okian/encore/pkg/logger"
	"github.com/okian/encore/pkg/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// roomUpdate is the wire shape pushed to watch clients.
type roomUpdate struct {
	Type  string      `json:"type"`
	Found bool        `json:"found"`
	Room  interface{} `json:"room,omitempty"`
}

// WatchHandler streams room changes over a websocket.
type WatchHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewWatchHandler creates a new watch handler.
func NewWatchHandler(deps Dependencies) *WatchHandler {
	return &WatchHandler{deps: deps, log: logger.Get().Named("ws")}
}

// HandleWatch handles GET /rooms/{id}/watch requests. Each update carries
// the full room snapshot; clients re-render from the latest message, so a
// missed frame never corrupts state.
func (h *WatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.watch_room"
	roomID := r.PathValue("id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed",
			logger.String("room", roomID), logger.Error(err))
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	metrics.WebsocketConnected()
	defer metrics.WebsocketDisconnected()
	h.log.Info(r.Context(), "watch client connected",
		logger.String("client", clientID), logger.String("room", roomID))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Serialize writes; the watch callback and the close path both touch
	// the connection.
	var writeMu sync.Mutex
	send := func(ev watch.Event) {
		writeMu.Lock()
		defer writeMu.Unlock()
		update := roomUpdate{Type: "room", Found: ev.Found}
		if ev.Found {
			update.Room = ev.Room
		}
		if err := conn.WriteJSON(update); err != nil {
			cancel()
		}
	}

	stop, err := h.deps.Watch(ctx, roomID, send)
	if err != nil {
		h.log.Warn(ctx, "watch subscription failed",
			logger.String("room", roomID), logger.Error(Wrap(op, err)))
		return
	}
	defer stop()

	// Drain control frames until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.log.Info(context.Background(), "watch client disconnected",
		logger.String("client", clientID), logger.String("room", roomID))
}
