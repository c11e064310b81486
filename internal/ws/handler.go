package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from arbitrary origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to WebSocket connections
type Handler struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewHandler creates a new ws Handler
func NewHandler(dispatcher *Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP upgrades the connection and starts the pumps
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	client := newClient(conn, h.dispatcher, h.logger)
	go client.writePump()
	go client.readPump()
}
