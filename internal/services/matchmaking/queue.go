// Package matchmaking pairs queued players first-come-first-served and
// walks each pair through the symbol handshake before handing them to
// the session store.
package matchmaking

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

// SessionCreator starts a game session between two participants.
// Satisfied by the session store.
type SessionCreator interface {
	Create(a, b *model.Participant) model.SessionID
}

type waiter struct {
	username  model.Username
	transport model.Transport
}

// Queue is the FIFO matchmaking queue plus the pending matches spawned
// from it
type Queue struct {
	mu      sync.Mutex
	waiting []*waiter
	matches map[model.MatchID]*model.PendingMatch

	sessions SessionCreator
	gateway  *gateway.Gateway
	random   random.Random
	logger   *slog.Logger
}

// New creates a new matchmaking Queue
func New(sessions SessionCreator, gw *gateway.Gateway, rnd random.Random, logger *slog.Logger) *Queue {
	return &Queue{
		matches:  make(map[model.MatchID]*model.PendingMatch),
		sessions: sessions,
		gateway:  gw,
		random:   rnd,
		logger:   logger.With(slog.String("component", "matchmaking")),
	}
}

// notification is an event held until the queue lock is released
type notification struct {
	target model.Transport
	event  model.EventType
	data   any
}

// Enqueue adds an identity to the queue. If someone is already waiting
// the two are paired immediately and both receive matchFound. Enqueueing
// while already queued or already in a pending match is a no-op.
func (q *Queue) Enqueue(username model.Username, transport model.Transport) {
	q.mu.Lock()
	notifications := q.enqueueLocked(username, transport)
	q.mu.Unlock()
	q.deliver(notifications)
}

func (q *Queue) enqueueLocked(username model.Username, transport model.Transport) []notification {
	for _, w := range q.waiting {
		if w.username == username {
			return nil
		}
	}
	for _, m := range q.matches {
		if m.Candidate(username) != nil {
			return nil
		}
	}

	if len(q.waiting) == 0 {
		q.waiting = append(q.waiting, &waiter{username: username, transport: transport})
		q.logger.Info("queued for matchmaking", slog.String("username", string(username)))
		return nil
	}

	head := q.waiting[0]
	q.waiting = q.waiting[1:]

	match := &model.PendingMatch{
		ID: model.MatchID(q.random.String(idLength, idAlphabet)),
		Candidates: [2]*model.MatchCandidate{
			{Username: head.username, Transport: head.transport},
			{Username: username, Transport: transport},
		},
		Taken: make(map[model.Symbol]bool),
	}
	q.matches[match.ID] = match

	q.logger.Info("match found",
		slog.String("match_id", string(match.ID)),
		slog.String("players", string(head.username)+" vs "+string(username)))
	return []notification{
		{head.transport, model.EventMatchFound, model.MatchFoundPayload{MatchID: match.ID, Opponent: username}},
		{transport, model.EventMatchFound, model.MatchFoundPayload{MatchID: match.ID, Opponent: head.username}},
	}
}

// Cancel removes an identity from matchmaking: out of the waiting line,
// and out of any pending match it sits in. A dissolved match's other
// candidate goes back to the head of the line and may re-pair at once.
// Canceling while not queued is a no-op.
func (q *Queue) Cancel(username model.Username) {
	q.mu.Lock()
	var notifications []notification

	for i, w := range q.waiting {
		if w.username == username {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			q.logger.Info("left matchmaking", slog.String("username", string(username)))
			q.mu.Unlock()
			return
		}
	}

	for id, m := range q.matches {
		if m.Candidate(username) == nil {
			continue
		}
		delete(q.matches, id)
		q.logger.Info("pending match dissolved",
			slog.String("match_id", string(id)),
			slog.String("canceled_by", string(username)))
		for _, c := range m.Candidates {
			if c.Username != username {
				q.waiting = append([]*waiter{{username: c.Username, transport: c.Transport}}, q.waiting...)
				notifications = q.pairHeadLocked()
			}
		}
		break
	}
	q.mu.Unlock()
	q.deliver(notifications)
}

// pairHeadLocked pairs the first two waiters if there are at least two
func (q *Queue) pairHeadLocked() []notification {
	if len(q.waiting) < 2 {
		return nil
	}
	next := q.waiting[1]
	q.waiting = append(q.waiting[:1], q.waiting[2:]...)
	return q.enqueueLocked(next.username, next.transport)
}

// ChooseSymbol records a candidate's symbol pick. A symbol the other
// candidate already claimed gets symbolTaken back and nothing else; an
// accepted pick gets symbolAccepted. When both candidates hold distinct
// symbols the match is discarded and a session starts. Picks against an
// unknown match, by a non-candidate, or after the candidate has already
// chosen are silently ignored.
func (q *Queue) ChooseSymbol(username model.Username, matchID model.MatchID, symbol model.Symbol) {
	q.mu.Lock()
	match, ok := q.matches[matchID]
	if !ok {
		q.mu.Unlock()
		return
	}
	candidate := match.Candidate(username)
	if candidate == nil || candidate.Symbol != "" {
		q.mu.Unlock()
		return
	}

	if match.Taken[symbol] {
		q.mu.Unlock()
		q.gateway.Send(candidate.Transport, model.EventSymbolTaken, model.SymbolTakenPayload{
			MatchID: matchID,
			Symbol:  symbol,
		})
		return
	}

	candidate.Symbol = symbol
	match.Taken[symbol] = true
	match.ChosenCount++
	done := match.ChosenCount == 2
	if done {
		delete(q.matches, matchID)
	}
	q.mu.Unlock()

	q.gateway.Send(candidate.Transport, model.EventSymbolAccepted, model.SymbolAcceptedPayload{
		MatchID: matchID,
		Symbol:  symbol,
	})

	if done {
		q.logger.Info("symbols settled, starting session", slog.String("match_id", string(matchID)))
		q.sessions.Create(
			&model.Participant{Username: match.Candidates[0].Username, Symbol: match.Candidates[0].Symbol, Transport: match.Candidates[0].Transport},
			&model.Participant{Username: match.Candidates[1].Username, Symbol: match.Candidates[1].Symbol, Transport: match.Candidates[1].Transport},
		)
	}
}

func (q *Queue) deliver(notifications []notification) {
	for _, n := range notifications {
		q.gateway.Send(n.target, n.event, n.data)
	}
}
