package response

import (
	"github.com/Makuqty/GridLock/internal/model"
)

// User represents a user in API responses
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		Username:    string(u.Username),
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Wins:        u.Wins,
		Losses:      u.Losses,
		Draws:       u.Draws,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// LeaderboardEntry is one row of the leaderboard
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	User
}

// LeaderboardResponse is the response for the leaderboard endpoint
type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardFromModels builds a ranked leaderboard from an ordered slice
func LeaderboardFromModels(users []*model.User) LeaderboardResponse {
	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{Rank: i + 1, User: UserFromModel(u)})
	}
	return LeaderboardResponse{Entries: entries}
}
