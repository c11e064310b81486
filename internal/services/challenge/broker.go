// Package challenge brokers direct game invitations between online
// identities. A challenge lives until exactly one response consumes it;
// stale responses fall through silently.
package challenge

import (
	"log/slog"
	"sync"

	"github.com/Makuqty/GridLock/internal/dependencies/random"
	"github.com/Makuqty/GridLock/internal/model"
	"github.com/Makuqty/GridLock/internal/services/gateway"
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 12
)

// Presence resolves an online identity to its transport handle.
// Satisfied by the identity registry.
type Presence interface {
	Lookup(username model.Username) model.Transport
}

// SessionCreator starts a game session between two participants.
// Satisfied by the session store.
type SessionCreator interface {
	Create(a, b *model.Participant) model.SessionID
}

// Broker holds challenges awaiting a response
type Broker struct {
	mu         sync.Mutex
	challenges map[model.ChallengeID]*model.Challenge

	presence Presence
	sessions SessionCreator
	gateway  *gateway.Gateway
	random   random.Random
	logger   *slog.Logger
}

// New creates a new challenge Broker
func New(presence Presence, sessions SessionCreator, gw *gateway.Gateway, rnd random.Random, logger *slog.Logger) *Broker {
	return &Broker{
		challenges: make(map[model.ChallengeID]*model.Challenge),
		presence:   presence,
		sessions:   sessions,
		gateway:    gw,
		random:     rnd,
		logger:     logger.With(slog.String("component", "challenge")),
	}
}

// Send records a challenge and notifies the target. Challenges to
// offline identities are dropped without feedback.
func (b *Broker) Send(challenger, target model.Username, symbol model.Symbol) {
	transport := b.presence.Lookup(target)
	if transport == nil {
		b.logger.Debug("challenge target offline", slog.String("target", string(target)))
		return
	}

	challenge := &model.Challenge{
		ID:         model.ChallengeID(b.random.String(idLength, idAlphabet)),
		Challenger: challenger,
		Challenged: target,
		Symbol:     symbol,
	}

	b.mu.Lock()
	b.challenges[challenge.ID] = challenge
	b.mu.Unlock()

	b.logger.Info("challenge sent",
		slog.String("challenge_id", string(challenge.ID)),
		slog.String("from", string(challenger)),
		slog.String("to", string(target)))
	b.gateway.Send(transport, model.EventChallengeReceived, model.ChallengeReceivedPayload{
		ChallengeID: challenge.ID,
		From:        challenger,
		Symbol:      symbol,
	})
}

// Respond resolves a challenge. A decline consumes it and notifies the
// challenger. An acceptance with the challenger's own symbol is rejected
// with symbolTaken and leaves the challenge open for another attempt.
// An acceptance with a distinct symbol consumes it and starts a session.
// Responses to unknown or already-consumed challenges, or from anyone
// but the challenged identity, are silently ignored.
func (b *Broker) Respond(responder model.Username, id model.ChallengeID, accepted bool, symbol model.Symbol) {
	b.mu.Lock()
	challenge, ok := b.challenges[id]
	if !ok || challenge.Challenged != responder {
		b.mu.Unlock()
		return
	}

	if accepted && symbol == challenge.Symbol {
		b.mu.Unlock()
		b.gateway.Send(b.presence.Lookup(responder), model.EventSymbolTaken, model.SymbolTakenPayload{
			Symbol: symbol,
		})
		return
	}

	delete(b.challenges, id)
	b.mu.Unlock()

	challengerTransport := b.presence.Lookup(challenge.Challenger)

	if !accepted {
		b.logger.Info("challenge declined", slog.String("challenge_id", string(id)))
		b.gateway.Send(challengerTransport, model.EventChallengeDeclined, model.ChallengeDeclinedPayload{
			By: responder,
		})
		return
	}

	if challengerTransport == nil {
		// Challenger went offline between send and accept; nothing to start
		b.logger.Debug("challenger offline at accept", slog.String("challenge_id", string(id)))
		return
	}

	b.logger.Info("challenge accepted", slog.String("challenge_id", string(id)))
	b.sessions.Create(
		&model.Participant{Username: challenge.Challenger, Symbol: challenge.Symbol, Transport: challengerTransport},
		&model.Participant{Username: responder, Symbol: symbol, Transport: b.presence.Lookup(responder)},
	)
}
