package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makuqty/GridLock/internal/dependencies/mocks"
	"github.com/Makuqty/GridLock/internal/model"
	"github.com/Makuqty/GridLock/internal/services/gateway"
	"github.com/Makuqty/GridLock/internal/services/session"
	"github.com/Makuqty/GridLock/internal/storage/memory"
	"github.com/Makuqty/GridLock/internal/testutil"
)

type fixture struct {
	store   *session.Store
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	alice   *testutil.RecordingTransport
	bob     *testutil.RecordingTransport
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := testutil.NopLogger()
	f := &fixture{
		storage: memory.New(),
		clock:   mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		random:  mocks.NewMockRandom(),
		alice:   testutil.NewRecordingTransport(),
		bob:     testutil.NewRecordingTransport(),
	}
	f.store = session.New(f.storage, gateway.New(logger), f.clock, f.random, logger)

	ctx := context.Background()
	for _, username := range []model.Username{"alice", "bob"} {
		require.NoError(t, f.storage.SaveUser(ctx, &model.User{Username: username}))
	}
	return f
}

// newGame creates a session with alice as X moving first and bob as O
func (f *fixture) newGame(t *testing.T) model.SessionID {
	t.Helper()
	f.random.QueueString("sess-1")
	f.random.QueueCoinFlip(true) // alice first
	id := f.store.Create(
		&model.Participant{Username: "alice", Symbol: "X", Transport: f.alice},
		&model.Participant{Username: "bob", Symbol: "O", Transport: f.bob},
	)
	f.alice.Reset()
	f.bob.Reset()
	return id
}

func (f *fixture) move(id model.SessionID, username model.Username, position int) {
	f.store.ApplyMove(context.Background(), username, id, position)
}

// playAliceWin drives the game to a top-row win for alice
func (f *fixture) playAliceWin(t *testing.T, id model.SessionID) {
	t.Helper()
	f.move(id, "alice", 0)
	f.move(id, "bob", 3)
	f.move(id, "alice", 1)
	f.move(id, "bob", 4)
	f.move(id, "alice", 2)
}

func lastUpdate(t *testing.T, tr *testutil.RecordingTransport) model.GameUpdatePayload {
	t.Helper()
	e := tr.Last(model.EventGameUpdate)
	require.NotNil(t, e)
	return e.Data.(model.GameUpdatePayload)
}

func TestCreateBroadcastsStart(t *testing.T) {
	f := newFixture(t)
	f.random.QueueString("sess-1")
	f.random.QueueCoinFlip(false) // bob first

	id := f.store.Create(
		&model.Participant{Username: "alice", Symbol: "X", Transport: f.alice},
		&model.Participant{Username: "bob", Symbol: "O", Transport: f.bob},
	)
	assert.Equal(t, model.SessionID("sess-1"), id)

	for _, tr := range []*testutil.RecordingTransport{f.alice, f.bob} {
		e := tr.Last(model.EventGameStart)
		require.NotNil(t, e)
		start := e.Data.(model.GameStartPayload)
		assert.Equal(t, id, start.SessionID)
		assert.Equal(t, model.Username("bob"), start.CurrentPlayer)
		assert.Equal(t, model.Board{}, start.Board)
		assert.Equal(t, map[model.Username]model.Symbol{"alice": "X", "bob": "O"}, start.Players)
	}
}

func TestApplyMoveAlternatesTurns(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)

	f.move(id, "alice", 4)

	update := lastUpdate(t, f.bob)
	assert.Equal(t, model.Symbol("X"), update.Board[4])
	assert.Equal(t, model.Username("bob"), update.CurrentPlayer)
	assert.Equal(t, model.SessionStatePlaying, update.State)
}

func TestApplyMoveIllegalIsSilent(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)

	f.move(id, "bob", 0)            // not bob's turn
	f.move(id, "carol", 0)          // not a participant
	f.move(id, "alice", 9)          // out of range
	f.move(id, "alice", -1)         // out of range
	f.move("nope", "alice", 0)      // unknown session
	assert.Empty(t, f.alice.Events())
	assert.Empty(t, f.bob.Events())

	f.move(id, "alice", 4)
	f.bob.Reset()
	f.move(id, "bob", 4) // occupied cell
	assert.Empty(t, f.bob.Events())
}

func TestWinFinishesGameAndRecordsStats(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)

	f.playAliceWin(t, id)

	for _, tr := range []*testutil.RecordingTransport{f.alice, f.bob} {
		update := lastUpdate(t, tr)
		assert.Equal(t, model.SessionStateFinished, update.State)
		assert.Equal(t, model.Username("alice"), update.Winner)
		assert.False(t, update.IsDraw)
	}

	ctx := context.Background()
	winner, err := f.storage.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, winner.Wins)

	loser, err := f.storage.GetUser(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, loser.Losses)
}

func TestMoveAfterGameOverIsSilent(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)
	f.playAliceWin(t, id)
	f.bob.Reset()

	f.move(id, "bob", 5)
	assert.Empty(t, f.bob.Events())
}

func TestDrawFillsBoardAndRecordsStats(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)

	// X O X / X O O / O X X with no three in a row
	for _, m := range []struct {
		who model.Username
		pos int
	}{
		{"alice", 0}, {"bob", 1}, {"alice", 2},
		{"bob", 4}, {"alice", 3}, {"bob", 5},
		{"alice", 7}, {"bob", 6}, {"alice", 8},
	} {
		f.move(id, m.who, m.pos)
	}

	update := lastUpdate(t, f.alice)
	assert.Equal(t, model.SessionStateDraw, update.State)
	assert.True(t, update.IsDraw)
	assert.Empty(t, update.Winner)

	ctx := context.Background()
	for _, username := range []model.Username{"alice", "bob"} {
		user, err := f.storage.GetUser(ctx, username)
		require.NoError(t, err)
		assert.Equal(t, 1, user.Draws)
	}
}

func TestSendMessageRelaysToBoth(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)

	f.store.SendMessage("alice", id, "good luck")

	for _, tr := range []*testutil.RecordingTransport{f.alice, f.bob} {
		e := tr.Last(model.EventMessageReceived)
		require.NotNil(t, e)
		msg := e.Data.(model.MessageReceivedPayload)
		assert.Equal(t, model.Username("alice"), msg.From)
		assert.Equal(t, "good luck", msg.Text)
		assert.Equal(t, f.clock.CurrentTime, msg.SentAt)
	}
}

func TestSendMessageNonParticipantIgnored(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)

	f.store.SendMessage("carol", id, "let me in")
	assert.Empty(t, f.alice.Events())
	assert.Empty(t, f.bob.Events())
}

func TestRematchRequiresBothVotes(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)
	f.playAliceWin(t, id)
	f.alice.Reset()
	f.bob.Reset()

	f.store.RequestRematch("alice", id)

	e := f.bob.Last(model.EventRematchRequested)
	require.NotNil(t, e)
	assert.Equal(t, model.Username("alice"), e.Data.(model.RematchRequestedPayload).From)
	assert.Nil(t, f.alice.Last(model.EventGameStart))

	f.store.RespondToRematch("bob", id, true)

	// Loser of the previous game moves first
	for _, tr := range []*testutil.RecordingTransport{f.alice, f.bob} {
		e := tr.Last(model.EventGameStart)
		require.NotNil(t, e)
		start := e.Data.(model.GameStartPayload)
		assert.Equal(t, model.Username("bob"), start.CurrentPlayer)
		assert.Equal(t, model.Board{}, start.Board)
	}
}

func TestRematchDuringPlayIsSilent(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)

	f.store.RequestRematch("alice", id)
	assert.Empty(t, f.bob.Events())
}

func TestRematchDeclineClearsVotes(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)
	f.playAliceWin(t, id)
	f.alice.Reset()
	f.bob.Reset()

	f.store.RequestRematch("alice", id)
	f.store.RespondToRematch("bob", id, false)

	e := f.alice.Last(model.EventRematchDeclined)
	require.NotNil(t, e)
	assert.Equal(t, model.Username("bob"), e.Data.(model.RematchDeclinedPayload).From)

	// A later lone vote must not start a game; the earlier vote is gone
	f.alice.Reset()
	f.bob.Reset()
	f.store.RequestRematch("bob", id)
	assert.Nil(t, f.alice.Last(model.EventGameStart))
	assert.Nil(t, f.bob.Last(model.EventGameStart))
	assert.NotNil(t, f.alice.Last(model.EventRematchRequested))
}

func TestRematchAfterDrawFirstSeatStarts(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)

	for _, m := range []struct {
		who model.Username
		pos int
	}{
		{"alice", 0}, {"bob", 1}, {"alice", 2},
		{"bob", 4}, {"alice", 3}, {"bob", 5},
		{"alice", 7}, {"bob", 6}, {"alice", 8},
	} {
		f.move(id, m.who, m.pos)
	}
	f.alice.Reset()

	f.store.RequestRematch("alice", id)
	f.store.RequestRematch("bob", id)

	e := f.alice.Last(model.EventGameStart)
	require.NotNil(t, e)
	assert.Equal(t, model.Username("alice"), e.Data.(model.GameStartPayload).CurrentPlayer)
}

func TestLeaveRemovesSession(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)

	f.store.Leave("alice", id)
	assert.Nil(t, f.store.Get(id))

	// Moves against the departed session are silent
	f.move(id, "bob", 0)
	assert.Empty(t, f.bob.Events())

	// Second leave is a no-op
	f.store.Leave("bob", id)
}

type failingStats struct {
	*memory.Storage
}

func (f *failingStats) IncrementStat(ctx context.Context, username model.Username, kind model.StatKind) error {
	return assert.AnError
}

func TestStatsFailureKeepsResultAndReportsError(t *testing.T) {
	logger := testutil.NopLogger()
	f := &fixture{
		clock:  mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		random: mocks.NewMockRandom(),
		alice:  testutil.NewRecordingTransport(),
		bob:    testutil.NewRecordingTransport(),
	}
	f.store = session.New(&failingStats{memory.New()}, gateway.New(logger), f.clock, f.random, logger)
	id := f.newGame(t)

	f.playAliceWin(t, id)

	// The game still finishes; persistence failure only adds an error event
	for _, tr := range []*testutil.RecordingTransport{f.alice, f.bob} {
		update := lastUpdate(t, tr)
		assert.Equal(t, model.SessionStateFinished, update.State)
		require.NotNil(t, tr.Last(model.EventError))
	}
}

func TestLeaveByNonParticipantIgnored(t *testing.T) {
	f := newFixture(t)
	id := f.newGame(t)

	f.store.Leave("carol", id)
	assert.NotNil(t, f.store.Get(id))
}
