package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/apoclyps/cr8s/internal/core/domain"
	"github.com/apoclyps/cr8s/internal/core/ports"
	"github.com/apoclyps/cr8s/internal/pkg/password"
)

const (
	// sessionTokenLength matches the 128-character alphanumeric token space,
	// well past 128 bits of entropy (62^128); collisions are not checked.
	sessionTokenLength = 128

	defaultSessionTTL = 3 * time.Hour
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AuthService implements the login protocol and per-request identity
// resolution against a user directory and a session store.
type AuthService struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	hasher     *password.Hasher
	sessionTTL time.Duration
	logger     zerolog.Logger
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, hasher *password.Hasher, sessionTTL time.Duration, logger zerolog.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Login verifies credentials, mints a session token, and stores the
// token → user id mapping with the configured TTL. An unknown username and a
// wrong password are indistinguishable to the caller. If the store write
// fails the token is discarded and the call fails: a token that was never
// stored must not reach the client.
func (s *AuthService) Login(ctx context.Context, username, pass string) (string, error) {
	if username == "" || pass == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("directory lookup: %w", err)
	}

	if !s.hasher.Verify(pass, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	token, err := generateSessionToken()
	if err != nil {
		return "", fmt.Errorf("mint session token: %w", err)
	}

	if err := s.sessions.Put(ctx, token, user.ID, s.sessionTTL); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("session issued")
	return token, nil
}

// Resolve maps a session token to its user: session store first, then the
// directory. A store miss and a dangling session (user deleted after the
// token was issued) both fail with domain.ErrUnauthenticated; store or
// directory transport failures propagate as-is.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("session lookup: %w", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn().Int64("user_id", userID).Msg("session resolves to deleted user")
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("directory lookup: %w", err)
	}

	return user, nil
}

// generateSessionToken returns a fresh 128-character alphanumeric token from
// crypto/rand. Rejection sampling keeps the alphabet distribution uniform.
func generateSessionToken() (string, error) {
	token := make([]byte, sessionTokenLength)
	buf := make([]byte, 1)
	for i := 0; i < len(token); {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		// 248 is the largest multiple of 62 below 256.
		if buf[0] >= 248 {
			continue
		}
		token[i] = tokenAlphabet[int(buf[0])%len(tokenAlphabet)]
		i++
	}
	return string(token), nil
}
