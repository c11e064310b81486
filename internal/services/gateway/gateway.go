// Package gateway fans out events to sets of connected transports.
// It is pure delivery: it never inspects payloads and never fails —
// a send to a stale or absent handle is dropped.
package gateway

import (
	"log/slog"

	"github.com/Makuqty/GridLock/internal/model"
)

// Gateway delivers events to transport handles
type Gateway struct {
	logger *slog.Logger
}

// New creates a new Gateway
func New(logger *slog.Logger) *Gateway {
	return &Gateway{
		logger: logger.With(slog.String("component", "gateway")),
	}
}

// Send delivers an event to a single transport. A nil handle is dropped.
func (g *Gateway) Send(target model.Transport, event model.EventType, data any) {
	if target == nil {
		g.logger.Debug("send dropped, no transport", slog.String("event", string(event)))
		return
	}
	target.Send(event, data)
}

// Broadcast delivers an event to every transport in the set. Nil handles
// are skipped.
func (g *Gateway) Broadcast(targets []model.Transport, event model.EventType, data any) {
	for _, target := range targets {
		g.Send(target, event, data)
	}
}
