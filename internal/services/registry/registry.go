// Package registry tracks which identities are online and which transport
// handle each one speaks through. It is the single source of truth for
// presence; every register and unregister rebroadcasts the roster.
package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/Makuqty/GridLock/internal/model"
	"github.com/Makuqty/GridLock/internal/services/gateway"
)

// MatchmakingCanceler removes an identity from the matchmaking queue.
// Satisfied by the matchmaking queue; the registry calls it on disconnect
// so nobody gets paired against a dead handle.
type MatchmakingCanceler interface {
	Cancel(username model.Username)
}

// ProfileSource loads user records. Satisfied by the storage layer; the
// registry re-reads profiles before roster broadcasts so stat counters
// stay current as games finish.
type ProfileSource interface {
	GetUser(ctx context.Context, username model.Username) (*model.User, error)
}

type entry struct {
	transport model.Transport
	user      model.PublicUser
}

// Registry maps online identities to their transport handles
type Registry struct {
	mu      sync.Mutex
	entries map[model.Username]*entry

	gateway     *gateway.Gateway
	profiles    ProfileSource
	matchmaking MatchmakingCanceler
	logger      *slog.Logger
}

// New creates a new Registry
func New(profiles ProfileSource, gw *gateway.Gateway, logger *slog.Logger) *Registry {
	return &Registry{
		entries:  make(map[model.Username]*entry),
		gateway:  gw,
		profiles: profiles,
		logger:   logger.With(slog.String("component", "registry")),
	}
}

// SetMatchmaking wires in the matchmaking queue. Set once at startup;
// broken out of the constructor because the queue also needs the registry.
func (r *Registry) SetMatchmaking(m MatchmakingCanceler) {
	r.matchmaking = m
}

// Register binds an identity to a transport handle. A second registration
// for the same identity replaces the previous handle (last writer wins),
// and a handle that was already bound to a different identity is unbound
// first, so one transport never holds two roster entries.
// The updated roster is broadcast to every online transport.
func (r *Registry) Register(username model.Username, user model.PublicUser, transport model.Transport) {
	r.mu.Lock()
	if _, ok := r.entries[username]; ok {
		r.logger.Info("replacing existing registration", slog.String("username", string(username)))
	}
	var displaced []model.Username
	for existing, e := range r.entries {
		if existing != username && e.transport == transport {
			r.logger.Info("handle rebound to new identity",
				slog.String("previous", string(existing)),
				slog.String("username", string(username)))
			delete(r.entries, existing)
			displaced = append(displaced, existing)
		}
	}
	r.entries[username] = &entry{transport: transport, user: user}
	users, transports := r.rosterLocked()
	r.mu.Unlock()

	if r.matchmaking != nil {
		for _, name := range displaced {
			r.matchmaking.Cancel(name)
		}
	}

	r.logger.Info("user online", slog.String("username", string(username)))
	r.gateway.Broadcast(transports, model.EventOnlineUsers, model.OnlineUsersPayload{Users: r.refreshProfiles(users)})
}

// Unregister removes whichever identity is bound to the given transport
// handle and cancels any matchmaking it had in flight. Unknown handles
// are a no-op, so double-disconnects are safe.
func (r *Registry) Unregister(transport model.Transport) {
	r.mu.Lock()
	var found model.Username
	var ok bool
	for username, e := range r.entries {
		if e.transport == transport {
			found = username
			ok = true
			break
		}
	}
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.entries, found)
	users, transports := r.rosterLocked()
	r.mu.Unlock()

	if r.matchmaking != nil {
		r.matchmaking.Cancel(found)
	}

	r.logger.Info("user offline", slog.String("username", string(found)))
	r.gateway.Broadcast(transports, model.EventOnlineUsers, model.OnlineUsersPayload{Users: r.refreshProfiles(users)})
}

// Lookup returns the transport handle for an online identity, or nil if
// the identity is offline
func (r *Registry) Lookup(username model.Username) model.Transport {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[username]; ok {
		return e.transport
	}
	return nil
}

// OnlineUsers returns the current roster sorted by username
func (r *Registry) OnlineUsers() []model.PublicUser {
	r.mu.Lock()
	users, _ := r.rosterLocked()
	r.mu.Unlock()
	return r.refreshProfiles(users)
}

// Transports returns the transport handles of every online identity
func (r *Registry) Transports() []model.Transport {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, transports := r.rosterLocked()
	return transports
}

func (r *Registry) rosterLocked() ([]model.PublicUser, []model.Transport) {
	users := make([]model.PublicUser, 0, len(r.entries))
	transports := make([]model.Transport, 0, len(r.entries))
	for _, e := range r.entries {
		users = append(users, e.user)
		transports = append(transports, e.transport)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users, transports
}

// refreshProfiles re-reads each roster entry from storage so broadcasts
// carry current stat counters rather than the snapshot taken at
// registration. Entries that fail to load keep their snapshot.
func (r *Registry) refreshProfiles(users []model.PublicUser) []model.PublicUser {
	ctx := context.Background()
	for i, u := range users {
		stored, err := r.profiles.GetUser(ctx, u.Username)
		if err != nil {
			continue
		}
		users[i] = stored.Public()
	}
	return users
}
