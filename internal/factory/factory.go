package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/Makuqty/GridLock/internal/dependencies/clock"
	"github.com/Makuqty/GridLock/internal/dependencies/random"
	"github.com/Makuqty/GridLock/internal/services/auth"
	"github.com/Makuqty/GridLock/internal/services/challenge"
	"github.com/Makuqty/GridLock/internal/services/gateway"
	"github.com/Makuqty/GridLock/internal/services/matchmaking"
	"github.com/Makuqty/GridLock/internal/services/registry"
	"github.com/Makuqty/GridLock/internal/services/session"
	"github.com/Makuqty/GridLock/internal/storage"
	"github.com/Makuqty/GridLock/internal/storage/memory"
	redisstorage "github.com/Makuqty/GridLock/internal/storage/redis"
	"github.com/Makuqty/GridLock/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Gateway          *gateway.Gateway
	AuthService      *auth.Service
	Registry         *registry.Registry
	ChallengeBroker  *challenge.Broker
	MatchmakingQueue *matchmaking.Queue
	SessionStore     *session.Store

	// WebSocket edge
	Dispatcher *ws.Dispatcher
	WSHandler  *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg.AuthConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	gw := gateway.New(logger)
	authService := auth.New(store, clk, authCfg, logger)
	reg := registry.New(store, gw, logger)
	sessions := session.New(store, gw, clk, rnd, logger)
	queue := matchmaking.New(sessions, gw, rnd, logger)
	broker := challenge.New(reg, sessions, gw, rnd, logger)

	// The registry reports disconnects to the queue; wired late because
	// both sides need each other
	reg.SetMatchmaking(queue)

	dispatcher := ws.NewDispatcher(authService, reg, broker, queue, sessions, store, gw, logger)

	return &App{
		Storage:          store,
		Clock:            clk,
		Random:           rnd,
		Gateway:          gw,
		AuthService:      authService,
		Registry:         reg,
		ChallengeBroker:  broker,
		MatchmakingQueue: queue,
		SessionStore:     sessions,
		Dispatcher:       dispatcher,
		WSHandler:        ws.NewHandler(dispatcher, logger),
	}
}
