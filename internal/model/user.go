package model

import "time"

// Username uniquely identifies a player across the system
type Username string

// StatKind is the kind of statistic recorded at the end of a game
type StatKind string

const (
	StatWin  StatKind = "win"
	StatLoss StatKind = "loss"
	StatDraw StatKind = "draw"
)

// User represents a registered player record
type User struct {
	Username    Username
	DisplayName string
	Avatar      string
	Wins        int
	Losses      int
	Draws       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Credentials holds a user's authentication data
// Stored separately from the public record so the hash never travels with it
type Credentials struct {
	Username     Username
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the wire-safe projection of a User
type PublicUser struct {
	Username    Username `json:"username"`
	DisplayName string   `json:"displayName"`
	Avatar      string   `json:"avatar,omitempty"`
	Wins        int      `json:"wins"`
	Losses      int      `json:"losses"`
	Draws       int      `json:"draws"`
}

// Public returns the wire-safe projection of the user
func (u *User) Public() PublicUser {
	return PublicUser{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Wins:        u.Wins,
		Losses:      u.Losses,
		Draws:       u.Draws,
	}
}
