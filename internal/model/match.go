package model

// MatchID uniquely identifies a pending queue match
type MatchID string

// MatchCandidate is one half of a pending match awaiting symbol selection
type MatchCandidate struct {
	Username  Username
	Transport Transport
	// Symbol is empty until the candidate has chosen
	Symbol Symbol
}

// PendingMatch is a queue-paired duo awaiting symbol selection before a
// session is created. It is discarded when both symbols are chosen.
type PendingMatch struct {
	ID         MatchID
	Candidates [2]*MatchCandidate
	// Taken is the set of symbols already claimed in this match
	Taken map[Symbol]bool
	// ChosenCount is the number of candidates who have picked a symbol
	ChosenCount int
}

// Candidate returns the entry for the given username, or nil if the
// username is not part of this match
func (m *PendingMatch) Candidate(username Username) *MatchCandidate {
	for _, c := range m.Candidates {
		if c.Username == username {
			return c
		}
	}
	return nil
}
