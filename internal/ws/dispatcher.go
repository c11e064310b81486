// Package ws is the WebSocket edge: it upgrades connections, frames
// events, and routes them to the domain services. All game semantics
// live behind it; this package only authenticates and dispatches.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Makuqty/GridLock/internal/model"
	"github.com/Makuqty/GridLock/internal/services/auth"
	"github.com/Makuqty/GridLock/internal/services/challenge"
	"github.com/Makuqty/GridLock/internal/services/gateway"
	"github.com/Makuqty/GridLock/internal/services/matchmaking"
	"github.com/Makuqty/GridLock/internal/services/registry"
	"github.com/Makuqty/GridLock/internal/services/session"
	"github.com/Makuqty/GridLock/internal/storage"
)

// Dispatcher routes inbound events to the domain services
type Dispatcher struct {
	auth     *auth.Service
	registry *registry.Registry
	broker   *challenge.Broker
	queue    *matchmaking.Queue
	sessions *session.Store
	storage  storage.Storage
	gateway  *gateway.Gateway
	logger   *slog.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(
	authService *auth.Service,
	reg *registry.Registry,
	broker *challenge.Broker,
	queue *matchmaking.Queue,
	sessions *session.Store,
	store storage.Storage,
	gw *gateway.Gateway,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		auth:     authService,
		registry: reg,
		broker:   broker,
		queue:    queue,
		sessions: sessions,
		storage:  store,
		gateway:  gw,
		logger:   logger.With(slog.String("component", "ws")),
	}
}

// dispatch routes one inbound envelope. Everything except authenticate
// requires an authenticated connection; events arriving before auth are
// silently dropped. Malformed payloads are dropped the same way.
func (d *Dispatcher) dispatch(c *Client, env Envelope) {
	if env.Event == model.EventAuthenticate {
		d.handleAuthenticate(c, env.Data)
		return
	}

	username := c.Username()
	if username == "" {
		d.logger.Debug("dropping event from unauthenticated connection",
			slog.String("event", string(env.Event)))
		return
	}

	switch env.Event {
	case model.EventSendChallenge:
		var p model.SendChallengePayload
		if decode(d, env, &p) {
			d.broker.Send(username, p.Target, p.Symbol)
		}

	case model.EventRespondToChallenge:
		var p model.ChallengeResponsePayload
		if decode(d, env, &p) {
			d.broker.Respond(username, p.ChallengeID, p.Accepted, p.Symbol)
		}

	case model.EventFindMatch:
		d.queue.Enqueue(username, c)

	case model.EventCancelMatchmaking:
		d.queue.Cancel(username)

	case model.EventMatchSymbolChosen:
		var p model.SymbolChoicePayload
		if decode(d, env, &p) {
			d.queue.ChooseSymbol(username, p.MatchID, p.Symbol)
		}

	case model.EventMakeMove:
		var p model.MovePayload
		if decode(d, env, &p) {
			d.sessions.ApplyMove(context.Background(), username, p.SessionID, p.Position)
		}

	case model.EventSendMessage:
		var p model.ChatPayload
		if decode(d, env, &p) {
			d.sessions.SendMessage(username, p.SessionID, p.Text)
		}

	case model.EventRequestRematch:
		var p model.RematchPayload
		if decode(d, env, &p) {
			d.sessions.RequestRematch(username, p.SessionID)
		}

	case model.EventRespondToRematch:
		var p model.RematchResponsePayload
		if decode(d, env, &p) {
			d.sessions.RespondToRematch(username, p.SessionID, p.Accepted)
		}

	case model.EventLeaveGame:
		var p model.LeavePayload
		if decode(d, env, &p) {
			d.sessions.Leave(username, p.SessionID)
		}

	case model.EventUpdateAvatar:
		var p model.AvatarPayload
		if decode(d, env, &p) {
			d.handleUpdateAvatar(c, username, p.Avatar)
		}

	default:
		d.logger.Debug("unknown event", slog.String("event", string(env.Event)))
	}
}

// handleAuthenticate verifies the presented token and brings the
// connection online. Failures get an explicit authError; everything
// after success flows through the registry broadcast.
func (d *Dispatcher) handleAuthenticate(c *Client, data json.RawMessage) {
	var p model.AuthenticatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		d.gateway.Send(c, model.EventAuthError, model.AuthErrorPayload{Reason: "malformed payload"})
		return
	}

	username, err := d.auth.VerifyToken(p.Token)
	if err != nil {
		d.gateway.Send(c, model.EventAuthError, model.AuthErrorPayload{Reason: "invalid token"})
		return
	}

	user, err := d.storage.GetUser(context.Background(), username)
	if err != nil {
		d.logger.Error("failed to load user on authenticate",
			slog.String("username", string(username)),
			slog.String("error", err.Error()))
		d.gateway.Send(c, model.EventAuthError, model.AuthErrorPayload{Reason: "unknown user"})
		return
	}

	c.setUsername(username)
	d.gateway.Send(c, model.EventAuthenticated, user.Public())
	d.registry.Register(username, user.Public(), c)
}

func (d *Dispatcher) handleUpdateAvatar(c *Client, username model.Username, avatar string) {
	if err := d.storage.SetAvatar(context.Background(), username, avatar); err != nil {
		d.logger.Error("failed to update avatar",
			slog.String("username", string(username)),
			slog.String("error", err.Error()))
		d.gateway.Send(c, model.EventError, model.ErrorPayload{Message: "failed to update avatar"})
		return
	}
	d.gateway.Send(c, model.EventAvatarUpdated, model.AvatarPayload{Avatar: avatar})
}

// disconnect tears down a dying connection's presence
func (d *Dispatcher) disconnect(c *Client) {
	d.registry.Unregister(c)
}

// decode unmarshals an envelope payload, dropping the event on failure
func decode(d *Dispatcher, env Envelope, out any) bool {
	if err := json.Unmarshal(env.Data, out); err != nil {
		d.logger.Debug("dropping event with malformed payload",
			slog.String("event", string(env.Event)),
			slog.String("error", err.Error()))
		return false
	}
	return true
}
