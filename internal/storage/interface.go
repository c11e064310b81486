package storage

import (
	"context"

	"github.com/Makuqty/GridLock/internal/model"
)

// Storage defines the interface for persistent user data. In-flight game
// state (sessions, challenges, pending matches, the queue) is deliberately
// not persisted; it is ephemeral, in-memory state.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, username model.Username) (*model.User, error)

	// Credential operations
	SaveCredentials(ctx context.Context, creds *model.Credentials) error
	GetCredentials(ctx context.Context, username model.Username) (*model.Credentials, error)

	// Stats operations
	IncrementStat(ctx context.Context, username model.Username, kind model.StatKind) error
	SetAvatar(ctx context.Context, username model.Username, avatar string) error

	// TopUsers returns up to limit users ordered by wins descending,
	// ties broken by username
	TopUsers(ctx context.Context, limit int) ([]*model.User, error)
}
