package ports

import (
	"context"

	"github.com/apoclyps/cr8s/internal/core/domain"
)

// AuthService implements the login protocol and per-request identity
// resolution.
type AuthService interface {
	// Login verifies credentials and returns a fresh session token.
	// Unknown usernames and wrong passwords are indistinguishable:
	// both fail with domain.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (string, error)
	// Resolve maps a session token back to its user. A missing or expired
	// session, or a user deleted after issuance, fails with
	// domain.ErrUnauthenticated.
	Resolve(ctx context.Context, token string) (*domain.User, error)
}
