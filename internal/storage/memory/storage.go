package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Makuqty/GridLock/internal/model"
	"github.com/Makuqty/GridLock/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users       map[model.Username]*model.User
	credentials map[model.Username]*model.Credentials
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:       make(map[model.Username]*model.User),
		credentials: make(map[model.Username]*model.Credentials),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users[user.Username] = &copied
	return nil
}

func (s *Storage) GetUser(ctx context.Context, username model.Username) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// Credential operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *creds
	s.credentials[creds.Username] = &copied
	return nil
}

func (s *Storage) GetCredentials(ctx context.Context, username model.Username) (*model.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.credentials[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *creds
	return &copied, nil
}

// Stats operations

func (s *Storage) IncrementStat(ctx context.Context, username model.Username, kind model.StatKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return model.ErrUserNotFound
	}
	switch kind {
	case model.StatWin:
		user.Wins++
	case model.StatLoss:
		user.Losses++
	case model.StatDraw:
		user.Draws++
	}
	return nil
}

func (s *Storage) SetAvatar(ctx context.Context, username model.Username, avatar string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return model.ErrUserNotFound
	}
	user.Avatar = avatar
	return nil
}

func (s *Storage) TopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		copied := *user
		users = append(users, &copied)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].Wins != users[j].Wins {
			return users[i].Wins > users[j].Wins
		}
		return users[i].Username < users[j].Username
	})

	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}
