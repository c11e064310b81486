package model

// SessionID uniquely identifies a game session
type SessionID string

// Symbol is the mark a participant places on the board (e.g. "X" or "O")
type Symbol string

// BoardSize is the number of cells on the linear board
const BoardSize = 9

// Board is a linear 9-cell grid; an empty string means an open cell
type Board [BoardSize]Symbol

// IsFull returns true when every cell holds a symbol
func (b Board) IsFull() bool {
	for _, cell := range b {
		if cell == "" {
			return false
		}
	}
	return true
}

// SessionState represents the current phase of a game session
type SessionState string

const (
	SessionStatePlaying  SessionState = "playing"
	SessionStateFinished SessionState = "finished"
	SessionStateDraw     SessionState = "draw"
)

// Participant is one side of a game session. The transport handle is a
// non-owning back-reference into the connection layer; it may be stale.
type Participant struct {
	Username  Username
	Symbol    Symbol
	Transport Transport
}

// GameSession is an active two-player game instance
type GameSession struct {
	ID SessionID

	// Seats holds the two participants in creation order. The order is
	// stable for the session's lifetime and breaks ties (e.g. who starts
	// after a drawn game).
	Seats [2]*Participant

	Board         Board
	CurrentPlayer Username
	State         SessionState

	// LastWinner is the winner of the previous game in this session,
	// empty if there is none. Used for rematch turn order.
	LastWinner Username

	// RematchVotes is the set of participants who have asked for or
	// accepted a rematch since the last reset.
	RematchVotes map[Username]bool
}

// Participant returns the seat for the given username, or nil
func (s *GameSession) Participant(username Username) *Participant {
	for _, seat := range s.Seats {
		if seat.Username == username {
			return seat
		}
	}
	return nil
}

// Opponent returns the seat opposite the given username, or nil if the
// username is not a participant
func (s *GameSession) Opponent(username Username) *Participant {
	switch username {
	case s.Seats[0].Username:
		return s.Seats[1]
	case s.Seats[1].Username:
		return s.Seats[0]
	}
	return nil
}

// SymbolOwners maps each assigned symbol back to its owner
func (s *GameSession) SymbolOwners() map[Symbol]Username {
	return map[Symbol]Username{
		s.Seats[0].Symbol: s.Seats[0].Username,
		s.Seats[1].Symbol: s.Seats[1].Username,
	}
}

// PlayerSymbols maps each participant to their assigned symbol
func (s *GameSession) PlayerSymbols() map[Username]Symbol {
	return map[Username]Symbol{
		s.Seats[0].Username: s.Seats[0].Symbol,
		s.Seats[1].Username: s.Seats[1].Symbol,
	}
}

// Transports returns both participants' transport handles
func (s *GameSession) Transports() []Transport {
	return []Transport{s.Seats[0].Transport, s.Seats[1].Transport}
}
