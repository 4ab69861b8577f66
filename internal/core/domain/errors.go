package domain

import "errors"

// Authentication and authorization outcomes. ErrInvalidCredentials covers
// both unknown usernames and wrong passwords so the login response cannot be
// used for username enumeration. ErrUnauthenticated covers every failure to
// resolve a bearer token to a user: missing or malformed header, expired or
// unknown session, user deleted after issuance.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("access forbidden")
)

// Persistence outcomes.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrSessionNotFound   = errors.New("session not found")
	ErrRustaceanNotFound = errors.New("rustacean not found")
	ErrCrateNotFound     = errors.New("crate not found")

	// ErrUnknownRoleCode marks a role string outside the closed
	// {admin, editor, viewer} set. When it surfaces from storage it is a
	// persistence-integrity failure, not an authorization decision.
	ErrUnknownRoleCode = errors.New("unknown role code")
)
