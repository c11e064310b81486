package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Makuqty/GridLock/internal/dependencies/clock"
	"github.com/Makuqty/GridLock/internal/model"
	"github.com/Makuqty/GridLock/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUsernameExists     = errors.New("username already exists")
)

const tokenIssuer = "gridlock"

// Config holds configuration for the auth service
type Config struct {
	// TokenSecret signs issued tokens (HS256)
	TokenSecret []byte
	// TokenDuration is how long issued tokens stay valid
	TokenDuration time.Duration
}

// DefaultConfig returns default auth configuration. The secret must
// still be provided by the caller.
func DefaultConfig() Config {
	return Config{
		TokenDuration: 24 * time.Hour,
	}
}

// Service handles registration, login, and token verification
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = DefaultConfig().TokenDuration
	}
	return &Service{
		storage: storage,
		clock:   clock,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "auth")),
	}
}

// Register creates a new user account and returns the record with a
// fresh token
func (s *Service) Register(ctx context.Context, username model.Username, password, displayName string) (*model.User, string, error) {
	// Check if username exists
	_, err := s.storage.GetCredentials(ctx, username)
	if err == nil {
		return nil, "", ErrUsernameExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, "", err
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := s.clock.Now()
	user := &model.User{
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	creds := &model.Credentials{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, "", err
	}
	if err := s.storage.SaveCredentials(ctx, creds); err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", slog.String("username", string(username)))

	token, err := s.issueToken(username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates a user and returns the record with a fresh token
func (s *Service) Login(ctx context.Context, username model.Username, password string) (*model.User, string, error) {
	creds, err := s.storage.GetCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.storage.GetUser(ctx, username)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// VerifyToken validates a token and returns the identity it was issued to
func (s *Service) VerifyToken(token string) (model.Username, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return s.cfg.TokenSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return model.Username(claims.Subject), nil
}

// issueToken signs a new token for the given identity
func (s *Service) issueToken(username model.Username) (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   string(username),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenDuration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.TokenSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
