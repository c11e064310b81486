package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Makuqty/GridLock/internal/model"
	"github.com/Makuqty/GridLock/internal/storage"
)

// Stats hash fields
const (
	fieldWins   = "wins"
	fieldLosses = "losses"
	fieldDraws  = "draws"
)

// profile is the stored shape of a user record. Stats live in a separate
// hash so increments are atomic; they are merged on read.
type profile struct {
	Username    model.Username `json:"username"`
	DisplayName string         `json:"display_name"`
	Avatar      string         `json:"avatar"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(profile{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	})
	if err != nil {
		return err
	}

	// Pipeline profile write with leaderboard registration so new users
	// show up with zero wins
	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(user.Username), data, 0)
	pipe.ZAddNX(ctx, leaderboardKey(), redis.Z{
		Score:  float64(user.Wins),
		Member: string(user.Username),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, username model.Username) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var p profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	stats, err := s.client.HGetAll(ctx, statsKey(username)).Result()
	if err != nil {
		return nil, err
	}

	return &model.User{
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Avatar:      p.Avatar,
		Wins:        statField(stats, fieldWins),
		Losses:      statField(stats, fieldLosses),
		Draws:       statField(stats, fieldDraws),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

// Credential operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, credentialsKey(creds.Username), data, 0).Err()
}

func (s *Storage) GetCredentials(ctx context.Context, username model.Username) (*model.Credentials, error) {
	data, err := s.client.Get(ctx, credentialsKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var creds model.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Stats operations

func (s *Storage) IncrementStat(ctx context.Context, username model.Username, kind model.StatKind) error {
	exists, err := s.client.Exists(ctx, userKey(username)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrUserNotFound
	}

	field := ""
	switch kind {
	case model.StatWin:
		field = fieldWins
	case model.StatLoss:
		field = fieldLosses
	case model.StatDraw:
		field = fieldDraws
	default:
		return nil
	}

	pipe := s.client.Pipeline()
	pipe.HIncrBy(ctx, statsKey(username), field, 1)
	if kind == model.StatWin {
		pipe.ZIncrBy(ctx, leaderboardKey(), 1, string(username))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) SetAvatar(ctx context.Context, username model.Username, avatar string) error {
	data, err := s.client.Get(ctx, userKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ErrUserNotFound
		}
		return err
	}

	var p profile
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	p.Avatar = avatar
	updated, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, userKey(username), updated, 0).Err()
}

func (s *Storage) TopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	if limit <= 0 {
		limit = 10
	}

	members, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(members))
	for _, member := range members {
		username := model.Username(member.Member.(string))
		user, err := s.GetUser(ctx, username)
		if err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				continue // Stale leaderboard entry
			}
			return nil, err
		}
		users = append(users, user)
	}

	// The zset breaks ties in reverse lexicographic order on ZRevRange;
	// re-sort so ties come back by username ascending
	sort.Slice(users, func(i, j int) bool {
		if users[i].Wins != users[j].Wins {
			return users[i].Wins > users[j].Wins
		}
		return users[i].Username < users[j].Username
	})

	return users, nil
}

func statField(stats map[string]string, field string) int {
	n, err := strconv.Atoi(stats[field])
	if err != nil {
		return 0
	}
	return n
}
