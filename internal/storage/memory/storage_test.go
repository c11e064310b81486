package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makuqty/GridLock/internal/model"
)

func newTestStorage() (*Storage, context.Context) {
	return New(), context.Background()
}

func TestSaveAndGetUser(t *testing.T) {
	s, ctx := newTestStorage()

	user := &model.User{
		Username:    "alice",
		DisplayName: "Alice",
		CreatedAt:   time.Now(),
	}

	require.NoError(t, s.SaveUser(ctx, user))

	retrieved, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.Username, retrieved.Username)
	assert.Equal(t, user.DisplayName, retrieved.DisplayName)
}

func TestGetUserNotFound(t *testing.T) {
	s, ctx := newTestStorage()

	_, err := s.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestGetUserReturnsCopy(t *testing.T) {
	s, ctx := newTestStorage()

	require.NoError(t, s.SaveUser(ctx, &model.User{Username: "alice"}))

	first, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	first.Wins = 100

	second, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Wins)
}

func TestSaveAndGetCredentials(t *testing.T) {
	s, ctx := newTestStorage()

	creds := &model.Credentials{
		Username:     "alice",
		PasswordHash: "hash123",
	}

	require.NoError(t, s.SaveCredentials(ctx, creds))

	retrieved, err := s.GetCredentials(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash123", retrieved.PasswordHash)
}

func TestGetCredentialsNotFound(t *testing.T) {
	s, ctx := newTestStorage()

	_, err := s.GetCredentials(ctx, "nobody")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestIncrementStat(t *testing.T) {
	s, ctx := newTestStorage()
	require.NoError(t, s.SaveUser(ctx, &model.User{Username: "alice"}))

	require.NoError(t, s.IncrementStat(ctx, "alice", model.StatWin))
	require.NoError(t, s.IncrementStat(ctx, "alice", model.StatWin))
	require.NoError(t, s.IncrementStat(ctx, "alice", model.StatLoss))
	require.NoError(t, s.IncrementStat(ctx, "alice", model.StatDraw))

	user, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, user.Wins)
	assert.Equal(t, 1, user.Losses)
	assert.Equal(t, 1, user.Draws)
}

func TestIncrementStatUnknownUser(t *testing.T) {
	s, ctx := newTestStorage()

	err := s.IncrementStat(ctx, "nobody", model.StatWin)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestSetAvatar(t *testing.T) {
	s, ctx := newTestStorage()
	require.NoError(t, s.SaveUser(ctx, &model.User{Username: "alice"}))

	require.NoError(t, s.SetAvatar(ctx, "alice", "cat.png"))

	user, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "cat.png", user.Avatar)
}

func TestTopUsersOrdering(t *testing.T) {
	s, ctx := newTestStorage()

	require.NoError(t, s.SaveUser(ctx, &model.User{Username: "alice", Wins: 3}))
	require.NoError(t, s.SaveUser(ctx, &model.User{Username: "bob", Wins: 5}))
	require.NoError(t, s.SaveUser(ctx, &model.User{Username: "carol", Wins: 3}))

	top, err := s.TopUsers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, model.Username("bob"), top[0].Username)
	assert.Equal(t, model.Username("alice"), top[1].Username)
	assert.Equal(t, model.Username("carol"), top[2].Username)
}

func TestTopUsersLimit(t *testing.T) {
	s, ctx := newTestStorage()

	require.NoError(t, s.SaveUser(ctx, &model.User{Username: "alice", Wins: 3}))
	require.NoError(t, s.SaveUser(ctx, &model.User{Username: "bob", Wins: 5}))

	top, err := s.TopUsers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, model.Username("bob"), top[0].Username)
}
