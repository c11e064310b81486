package matchmaking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makuqty/GridLock/internal/dependencies/mocks"
	"github.com/Makuqty/GridLock/internal/model"
	"github.com/Makuqty/GridLock/internal/services/gateway"
	"github.com/Makuqty/GridLock/internal/services/matchmaking"
	"github.com/Makuqty/GridLock/internal/testutil"
)

type sessionRecorder struct {
	created [][2]*model.Participant
}

func (r *sessionRecorder) Create(a, b *model.Participant) model.SessionID {
	r.created = append(r.created, [2]*model.Participant{a, b})
	return "sess-1"
}

type fixture struct {
	queue    *matchmaking.Queue
	random   *mocks.MockRandom
	sessions *sessionRecorder
	alice    *testutil.RecordingTransport
	bob      *testutil.RecordingTransport
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := testutil.NopLogger()
	f := &fixture{
		random:   mocks.NewMockRandom(),
		sessions: &sessionRecorder{},
		alice:    testutil.NewRecordingTransport(),
		bob:      testutil.NewRecordingTransport(),
	}
	f.queue = matchmaking.New(f.sessions, gateway.New(logger), f.random, logger)
	return f
}

// pair queues alice then bob and returns the resulting match ID
func (f *fixture) pair(t *testing.T) model.MatchID {
	t.Helper()
	f.random.QueueString("match-1")
	f.queue.Enqueue("alice", f.alice)
	f.queue.Enqueue("bob", f.bob)
	e := f.alice.Last(model.EventMatchFound)
	require.NotNil(t, e)
	return e.Data.(model.MatchFoundPayload).MatchID
}

func TestEnqueuePairsFIFO(t *testing.T) {
	f := newFixture(t)
	id := f.pair(t)

	alicePayload := f.alice.Last(model.EventMatchFound).Data.(model.MatchFoundPayload)
	assert.Equal(t, id, alicePayload.MatchID)
	assert.Equal(t, model.Username("bob"), alicePayload.Opponent)

	bobPayload := f.bob.Last(model.EventMatchFound).Data.(model.MatchFoundPayload)
	assert.Equal(t, id, bobPayload.MatchID)
	assert.Equal(t, model.Username("alice"), bobPayload.Opponent)
}

func TestEnqueueAloneWaits(t *testing.T) {
	f := newFixture(t)

	f.queue.Enqueue("alice", f.alice)
	assert.Empty(t, f.alice.Events())
}

func TestEnqueueTwiceIsNoop(t *testing.T) {
	f := newFixture(t)

	f.queue.Enqueue("alice", f.alice)
	f.queue.Enqueue("alice", f.alice)
	assert.Empty(t, f.alice.Events())

	// Still pairs exactly once when an opponent shows up
	f.random.QueueString("match-1")
	f.queue.Enqueue("bob", f.bob)
	assert.Len(t, f.alice.EventsOfType(model.EventMatchFound), 1)
}

func TestEnqueueWhileInPendingMatchIsNoop(t *testing.T) {
	f := newFixture(t)
	f.pair(t)
	carol := testutil.NewRecordingTransport()

	f.queue.Enqueue("alice", f.alice)
	f.queue.Enqueue("carol", carol)
	assert.Empty(t, carol.Events())
}

func TestCancelLeavesQueue(t *testing.T) {
	f := newFixture(t)

	f.queue.Enqueue("alice", f.alice)
	f.queue.Cancel("alice")
	f.queue.Enqueue("bob", f.bob)

	assert.Empty(t, f.alice.Events())
	assert.Empty(t, f.bob.Events())
}

func TestCancelNotQueuedIsNoop(t *testing.T) {
	f := newFixture(t)
	f.queue.Cancel("nobody")
}

func TestCancelDissolvesPendingMatch(t *testing.T) {
	f := newFixture(t)
	id := f.pair(t)

	f.queue.Cancel("alice")

	// The match is gone; bob's picks against it fall through
	f.bob.Reset()
	f.queue.ChooseSymbol("bob", id, "X")
	assert.Empty(t, f.bob.Events())

	// Bob is back at the head of the line and re-pairs immediately
	carol := testutil.NewRecordingTransport()
	f.random.QueueString("match-2")
	f.queue.Enqueue("carol", carol)
	e := f.bob.Last(model.EventMatchFound)
	require.NotNil(t, e)
	assert.Equal(t, model.Username("carol"), e.Data.(model.MatchFoundPayload).Opponent)
}

func TestChooseSymbolHandshake(t *testing.T) {
	f := newFixture(t)
	id := f.pair(t)

	f.queue.ChooseSymbol("alice", id, "X")
	e := f.alice.Last(model.EventSymbolAccepted)
	require.NotNil(t, e)
	assert.Equal(t, model.Symbol("X"), e.Data.(model.SymbolAcceptedPayload).Symbol)
	assert.Empty(t, f.sessions.created)

	f.queue.ChooseSymbol("bob", id, "O")
	require.NotNil(t, f.bob.Last(model.EventSymbolAccepted))

	require.Len(t, f.sessions.created, 1)
	seats := f.sessions.created[0]
	assert.Equal(t, model.Username("alice"), seats[0].Username)
	assert.Equal(t, model.Symbol("X"), seats[0].Symbol)
	assert.Equal(t, model.Username("bob"), seats[1].Username)
	assert.Equal(t, model.Symbol("O"), seats[1].Symbol)
}

func TestChooseSymbolCollisionRejected(t *testing.T) {
	f := newFixture(t)
	id := f.pair(t)

	f.queue.ChooseSymbol("alice", id, "X")
	f.queue.ChooseSymbol("bob", id, "X")

	e := f.bob.Last(model.EventSymbolTaken)
	require.NotNil(t, e)
	assert.Equal(t, model.Symbol("X"), e.Data.(model.SymbolTakenPayload).Symbol)
	// Only the offender hears about it
	assert.Nil(t, f.alice.Last(model.EventSymbolTaken))
	assert.Empty(t, f.sessions.created)

	// A distinct pick still completes the handshake
	f.queue.ChooseSymbol("bob", id, "O")
	assert.Len(t, f.sessions.created, 1)
}

func TestChooseSymbolRechoosingIgnored(t *testing.T) {
	f := newFixture(t)
	id := f.pair(t)

	f.queue.ChooseSymbol("alice", id, "X")
	f.alice.Reset()

	f.queue.ChooseSymbol("alice", id, "O")
	assert.Empty(t, f.alice.Events())
}

func TestChooseSymbolUnknownMatchIgnored(t *testing.T) {
	f := newFixture(t)

	f.queue.ChooseSymbol("alice", "nope", "X")
	assert.Empty(t, f.alice.Events())
}

func TestChooseSymbolNonCandidateIgnored(t *testing.T) {
	f := newFixture(t)
	id := f.pair(t)

	f.queue.ChooseSymbol("carol", id, "X")
	assert.Empty(t, f.sessions.created)
}

func TestMatchDiscardedAfterHandshake(t *testing.T) {
	f := newFixture(t)
	id := f.pair(t)

	f.queue.ChooseSymbol("alice", id, "X")
	f.queue.ChooseSymbol("bob", id, "O")
	f.alice.Reset()

	// The pending match no longer exists
	f.queue.ChooseSymbol("alice", id, "O")
	assert.Empty(t, f.alice.Events())
	assert.Len(t, f.sessions.created, 1)
}
