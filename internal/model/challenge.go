package model

// ChallengeID uniquely identifies a direct challenge
type ChallengeID string

// Challenge is a direct invitation from one online identity to another.
// It is consumed by exactly one response; there is no resend or timeout.
type Challenge struct {
	ID         ChallengeID
	Challenger Username
	Challenged Username
	// Symbol is the mark the challenger picked for themselves
	Symbol Symbol
}
