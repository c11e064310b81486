package redis

import (
	"fmt"

	"github.com/Makuqty/GridLock/internal/model"
)

// Key prefix for all stored data
const keyPrefix = "gridlock"

// userKey returns the Redis key for a user's profile record
func userKey(username model.Username) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, username)
}

// credentialsKey returns the Redis key for a user's credentials
func credentialsKey(username model.Username) string {
	return fmt.Sprintf("%s:credentials:%s", keyPrefix, username)
}

// statsKey returns the Redis key for a user's stats hash
func statsKey(username model.Username) string {
	return fmt.Sprintf("%s:stats:%s", keyPrefix, username)
}

// leaderboardKey returns the Redis key for the wins-ordered leaderboard
func leaderboardKey() string {
	return fmt.Sprintf("%s:idx:leaderboard", keyPrefix)
}
