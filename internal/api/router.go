package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Makuqty/GridLock/internal/api/handler"
	"github.com/Makuqty/GridLock/internal/api/middleware"
	basemiddleware "github.com/Makuqty/GridLock/internal/middleware"
	"github.com/Makuqty/GridLock/internal/services/auth"
	"github.com/Makuqty/GridLock/internal/storage"
	"github.com/Makuqty/GridLock/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Storage     storage.Storage
	WSHandler   *ws.Handler
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	userHandler := handler.NewUserHandler(cfg.AuthService, cfg.Storage)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Storage)

	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := basemiddleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Account routes (no auth required for register/login)
	api.HandleFunc("/users/register", userHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/users/login", userHandler.Login).Methods(http.MethodPost)

	// Protected account routes
	me := api.PathPrefix("/users/me").Subrouter()
	me.Use(authMiddleware)
	me.HandleFunc("", userHandler.GetMe).Methods(http.MethodGet)
	me.HandleFunc("/avatar", userHandler.UpdateAvatar).Methods(http.MethodPatch)

	// Leaderboard (public)
	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// WebSocket endpoint mounted outside the logging chain: the wrapped
	// response writer would break the connection hijack
	if cfg.WSHandler != nil {
		r.Handle("/ws", cfg.WSHandler)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
