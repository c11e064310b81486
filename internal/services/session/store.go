// Package session owns active game sessions: turn legality, win and draw
// detection, chat relay, rematch consensus, and leaving. All mutation
// happens under the store lock; broadcasting happens after release.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Makuqty/GridLock/internal/dependencies/clock"
	"github.com/Makuqty/GridLock/internal/dependencies/random"
	"github.com/Makuqty/GridLock/internal/game"
	"github.com/Makuqty/GridLock/internal/model"
	"github.com/Makuqty/GridLock/internal/services/gateway"
	"github.com/Makuqty/GridLock/internal/storage"
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 12
)

// Store holds all active game sessions
type Store struct {
	mu       sync.Mutex
	sessions map[model.SessionID]*model.GameSession

	storage storage.Storage
	gateway *gateway.Gateway
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new session Store
func New(storage storage.Storage, gw *gateway.Gateway, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Store {
	return &Store{
		sessions: make(map[model.SessionID]*model.GameSession),
		storage:  storage,
		gateway:  gw,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "session")),
	}
}

// Create starts a new game session between two participants. The first
// mover is chosen at random and both sides receive the starting snapshot.
func (s *Store) Create(a, b *model.Participant) model.SessionID {
	session := &model.GameSession{
		ID:           model.SessionID(s.random.String(idLength, idAlphabet)),
		Seats:        [2]*model.Participant{a, b},
		State:        model.SessionStatePlaying,
		RematchVotes: make(map[model.Username]bool),
	}
	if s.random.CoinFlip() {
		session.CurrentPlayer = a.Username
	} else {
		session.CurrentPlayer = b.Username
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	start := startSnapshot(session)
	transports := session.Transports()
	s.mu.Unlock()

	s.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("players", string(a.Username)+" vs "+string(b.Username)))
	s.gateway.Broadcast(transports, model.EventGameStart, start)
	return session.ID
}

// ApplyMove places the caller's symbol at the given position if the move
// is legal. Illegal moves (unknown session, not a participant, not your
// turn, occupied cell, finished game, out-of-range position) are silently
// ignored. A legal move always produces a gameUpdate to both sides; a
// terminal move also records stats.
func (s *Store) ApplyMove(ctx context.Context, username model.Username, sessionID model.SessionID, position int) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return
	}
	participant := session.Participant(username)
	if participant == nil ||
		session.State != model.SessionStatePlaying ||
		session.CurrentPlayer != username ||
		position < 0 || position >= model.BoardSize ||
		session.Board[position] != "" {
		s.mu.Unlock()
		return
	}

	session.Board[position] = participant.Symbol

	var result gameResult
	if winner, won := game.Winner(session.Board, session.SymbolOwners()); won {
		session.State = model.SessionStateFinished
		session.LastWinner = winner
		result = gameResult{terminal: true, winner: winner, loser: session.Opponent(winner).Username}
	} else if session.Board.IsFull() {
		session.State = model.SessionStateDraw
		session.LastWinner = ""
		result = gameResult{terminal: true, draw: true}
	} else {
		session.CurrentPlayer = session.Opponent(username).Username
	}

	update := model.GameUpdatePayload{
		SessionID:     session.ID,
		Board:         session.Board,
		CurrentPlayer: session.CurrentPlayer,
		State:         session.State,
		Winner:        session.LastWinner,
		IsDraw:        session.State == model.SessionStateDraw,
	}
	seats := [2]model.Username{session.Seats[0].Username, session.Seats[1].Username}
	transports := session.Transports()
	s.mu.Unlock()

	s.gateway.Broadcast(transports, model.EventGameUpdate, update)

	if result.terminal {
		s.recordResult(ctx, sessionID, seats, transports, result)
	}
}

type gameResult struct {
	terminal bool
	draw     bool
	winner   model.Username
	loser    model.Username
}

// recordResult persists end-of-game stats. Persistence failure does not
// undo the finished game; both sides just get a generic error event.
func (s *Store) recordResult(ctx context.Context, sessionID model.SessionID, seats [2]model.Username, transports []model.Transport, result gameResult) {
	var err error
	if result.draw {
		for _, username := range seats {
			if e := s.storage.IncrementStat(ctx, username, model.StatDraw); e != nil {
				err = e
			}
		}
	} else {
		if e := s.storage.IncrementStat(ctx, result.winner, model.StatWin); e != nil {
			err = e
		}
		if e := s.storage.IncrementStat(ctx, result.loser, model.StatLoss); e != nil {
			err = e
		}
	}
	if err != nil {
		s.logger.Error("failed to record game result",
			slog.String("session_id", string(sessionID)),
			slog.String("error", err.Error()))
		s.gateway.Broadcast(transports, model.EventError, model.ErrorPayload{
			Message: "failed to save game result",
		})
	}
}

// SendMessage relays an in-game chat line to both participants, stamped
// with the server clock. Non-participants and unknown sessions are ignored.
func (s *Store) SendMessage(username model.Username, sessionID model.SessionID, text string) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok || session.Participant(username) == nil {
		s.mu.Unlock()
		return
	}
	transports := session.Transports()
	s.mu.Unlock()

	s.gateway.Broadcast(transports, model.EventMessageReceived, model.MessageReceivedPayload{
		SessionID: sessionID,
		From:      username,
		Text:      text,
		SentAt:    s.clock.Now(),
	})
}

// RequestRematch adds the caller to the rematch consensus set and tells
// the opponent. Only meaningful once the game has ended.
func (s *Store) RequestRematch(username model.Username, sessionID model.SessionID) {
	s.rematchVote(username, sessionID)
}

// RespondToRematch accepts or declines a pending rematch request. An
// acceptance is the same vote as a request; a decline clears the
// consensus set and notifies the other side.
func (s *Store) RespondToRematch(username model.Username, sessionID model.SessionID, accepted bool) {
	if accepted {
		s.rematchVote(username, sessionID)
		return
	}

	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok || session.Participant(username) == nil {
		s.mu.Unlock()
		return
	}
	session.RematchVotes = make(map[model.Username]bool)
	opponent := session.Opponent(username).Transport
	s.mu.Unlock()

	s.gateway.Send(opponent, model.EventRematchDeclined, model.RematchDeclinedPayload{
		SessionID: sessionID,
		From:      username,
	})
}

// rematchVote records one participant's consent. When both have
// consented the session resets in place: fresh board, playing state,
// and the previous game's loser moves first (first seat after a draw).
func (s *Store) rematchVote(username model.Username, sessionID model.SessionID) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok || session.Participant(username) == nil || session.State == model.SessionStatePlaying {
		s.mu.Unlock()
		return
	}
	session.RematchVotes[username] = true

	if len(session.RematchVotes) < 2 {
		opponent := session.Opponent(username).Transport
		s.mu.Unlock()
		s.gateway.Send(opponent, model.EventRematchRequested, model.RematchRequestedPayload{
			SessionID: sessionID,
			From:      username,
		})
		return
	}

	session.Board = model.Board{}
	session.State = model.SessionStatePlaying
	session.RematchVotes = make(map[model.Username]bool)
	if session.LastWinner != "" {
		session.CurrentPlayer = session.Opponent(session.LastWinner).Username
	} else {
		session.CurrentPlayer = session.Seats[0].Username
	}

	start := startSnapshot(session)
	transports := session.Transports()
	s.mu.Unlock()

	s.logger.Info("rematch started", slog.String("session_id", string(sessionID)))
	s.gateway.Broadcast(transports, model.EventGameStart, start)
}

// Leave removes the session unconditionally, mid-game or not. Both
// callers leaving is safe; the second call is a no-op.
func (s *Store) Leave(username model.Username, sessionID model.SessionID) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok || session.Participant(username) == nil {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.logger.Info("session closed",
		slog.String("session_id", string(sessionID)),
		slog.String("left_by", string(username)))
}

// Get returns the session with the given ID, or nil
func (s *Store) Get(sessionID model.SessionID) *model.GameSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[sessionID]
}

func startSnapshot(session *model.GameSession) model.GameStartPayload {
	return model.GameStartPayload{
		SessionID:     session.ID,
		Players:       session.PlayerSymbols(),
		CurrentPlayer: session.CurrentPlayer,
		Board:         session.Board,
	}
}
