package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makuqty/GridLock/internal/model"
	"github.com/Makuqty/GridLock/internal/services/gateway"
	"github.com/Makuqty/GridLock/internal/services/registry"
	"github.com/Makuqty/GridLock/internal/storage/memory"
	"github.com/Makuqty/GridLock/internal/testutil"
)

func newTestRegistry(t *testing.T) (*registry.Registry, *memory.Storage) {
	t.Helper()
	logger := testutil.NopLogger()
	store := memory.New()
	return registry.New(store, gateway.New(logger), logger), store
}

func publicUser(username model.Username) model.PublicUser {
	return model.PublicUser{Username: username, DisplayName: string(username)}
}

func rosterUsernames(e testutil.RecordedEvent) []model.Username {
	payload := e.Data.(model.OnlineUsersPayload)
	out := make([]model.Username, 0, len(payload.Users))
	for _, u := range payload.Users {
		out = append(out, u.Username)
	}
	return out
}

func TestRegisterBroadcastsRoster(t *testing.T) {
	reg, _ := newTestRegistry(t)
	alice := testutil.NewRecordingTransport()
	bob := testutil.NewRecordingTransport()

	reg.Register("alice", publicUser("alice"), alice)
	reg.Register("bob", publicUser("bob"), bob)

	// Both should have received the roster containing both, sorted
	last := alice.Last(model.EventOnlineUsers)
	require.NotNil(t, last)
	assert.Equal(t, []model.Username{"alice", "bob"}, rosterUsernames(*last))

	last = bob.Last(model.EventOnlineUsers)
	require.NotNil(t, last)
	assert.Equal(t, []model.Username{"alice", "bob"}, rosterUsernames(*last))
}

func TestRegisterReplacesHandle(t *testing.T) {
	reg, _ := newTestRegistry(t)
	first := testutil.NewRecordingTransport()
	second := testutil.NewRecordingTransport()

	reg.Register("alice", publicUser("alice"), first)
	reg.Register("alice", publicUser("alice"), second)

	assert.Same(t, model.Transport(second), reg.Lookup("alice"))
	assert.Len(t, reg.OnlineUsers(), 1)
}

func TestUnregisterByHandle(t *testing.T) {
	reg, _ := newTestRegistry(t)
	alice := testutil.NewRecordingTransport()
	bob := testutil.NewRecordingTransport()

	reg.Register("alice", publicUser("alice"), alice)
	reg.Register("bob", publicUser("bob"), bob)
	reg.Unregister(alice)

	assert.Nil(t, reg.Lookup("alice"))

	last := bob.Last(model.EventOnlineUsers)
	require.NotNil(t, last)
	assert.Equal(t, []model.Username{"bob"}, rosterUsernames(*last))
}

func TestUnregisterUnknownHandleIsNoop(t *testing.T) {
	reg, _ := newTestRegistry(t)
	alice := testutil.NewRecordingTransport()
	stranger := testutil.NewRecordingTransport()

	reg.Register("alice", publicUser("alice"), alice)
	before := len(alice.Events())

	reg.Unregister(stranger)

	// No extra roster broadcast
	assert.Len(t, alice.Events(), before)
	assert.NotNil(t, reg.Lookup("alice"))
}

func TestUnregisterStaleHandleKeepsNewRegistration(t *testing.T) {
	reg, _ := newTestRegistry(t)
	stale := testutil.NewRecordingTransport()
	fresh := testutil.NewRecordingTransport()

	reg.Register("alice", publicUser("alice"), stale)
	reg.Register("alice", publicUser("alice"), fresh)

	// The old connection closing must not knock the new one offline
	reg.Unregister(stale)
	assert.Same(t, model.Transport(fresh), reg.Lookup("alice"))
}

func TestRegisterRebindsHandleToNewIdentity(t *testing.T) {
	reg, _ := newTestRegistry(t)
	conn := testutil.NewRecordingTransport()

	reg.Register("alice", publicUser("alice"), conn)
	reg.Register("bob", publicUser("bob"), conn)

	// One transport holds one roster entry; the earlier identity is gone
	assert.Nil(t, reg.Lookup("alice"))
	assert.Same(t, model.Transport(conn), reg.Lookup("bob"))

	last := conn.Last(model.EventOnlineUsers)
	require.NotNil(t, last)
	assert.Equal(t, []model.Username{"bob"}, rosterUsernames(*last))

	// Disconnecting the handle leaves nobody behind
	reg.Unregister(conn)
	assert.Empty(t, reg.OnlineUsers())
}

type cancelRecorder struct {
	canceled []model.Username
}

func (c *cancelRecorder) Cancel(username model.Username) {
	c.canceled = append(c.canceled, username)
}

func TestUnregisterCancelsMatchmaking(t *testing.T) {
	reg, _ := newTestRegistry(t)
	rec := &cancelRecorder{}
	reg.SetMatchmaking(rec)

	alice := testutil.NewRecordingTransport()
	reg.Register("alice", publicUser("alice"), alice)
	reg.Unregister(alice)

	assert.Equal(t, []model.Username{"alice"}, rec.canceled)
}

func TestRebindCancelsDisplacedMatchmaking(t *testing.T) {
	reg, _ := newTestRegistry(t)
	rec := &cancelRecorder{}
	reg.SetMatchmaking(rec)

	conn := testutil.NewRecordingTransport()
	reg.Register("alice", publicUser("alice"), conn)
	reg.Register("bob", publicUser("bob"), conn)

	assert.Equal(t, []model.Username{"alice"}, rec.canceled)
}

func TestRosterRefreshesStatsFromStorage(t *testing.T) {
	reg, store := newTestRegistry(t)
	ctx := context.Background()
	require.NoError(t, store.SaveUser(ctx, &model.User{Username: "alice", DisplayName: "alice"}))

	alice := testutil.NewRecordingTransport()
	bob := testutil.NewRecordingTransport()
	reg.Register("alice", publicUser("alice"), alice)

	// Alice wins a game after registering; the snapshot taken at
	// registration had zero wins
	require.NoError(t, store.IncrementStat(ctx, "alice", model.StatWin))

	reg.Register("bob", publicUser("bob"), bob)

	last := alice.Last(model.EventOnlineUsers)
	require.NotNil(t, last)
	payload := last.Data.(model.OnlineUsersPayload)
	require.Len(t, payload.Users, 2)
	assert.Equal(t, model.Username("alice"), payload.Users[0].Username)
	assert.Equal(t, 1, payload.Users[0].Wins)

	users := reg.OnlineUsers()
	require.Len(t, users, 2)
	assert.Equal(t, 1, users[0].Wins)
}
