package ports

import (
	"context"

	"github.com/apoclyps/cr8s/internal/core/domain"
)

// UserWithRoles pairs a user with its assigned roles for listing.
type UserWithRoles struct {
	User  domain.User
	Roles []domain.Role
}

// UserRepository is the directory of users and their role assignments.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// RolesFor returns the role set of a user via the users_roles join.
	RolesFor(ctx context.Context, userID int64) ([]domain.Role, error)
	// Create stores a new user and assigns the given roles. Roles absent
	// from the catalogue are created on first reference.
	Create(ctx context.Context, username, passwordHash string, roles []domain.RoleCode) (*domain.User, error)
	// Delete removes a user and its role assignments.
	Delete(ctx context.Context, id int64) error
	ListWithRoles(ctx context.Context) ([]UserWithRoles, error)
}
