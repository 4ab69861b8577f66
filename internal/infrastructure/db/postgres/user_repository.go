package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apoclyps/cr8s/internal/core/domain"
	"github.com/apoclyps/cr8s/internal/core/ports"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// UserRepository is the pgx-backed user directory.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx,
		`SELECT id, username, password, created_at FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx,
		`SELECT id, username, password, created_at FROM users WHERE username = $1`, username)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// RolesFor returns the user's role set via the users_roles join. A stored
// code outside the closed enumeration fails the call: corrupt catalogue rows
// must never be downgraded into a working role.
func (r *UserRepository) RolesFor(ctx context.Context, userID int64) ([]domain.Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.code, r.name
		FROM roles r
		JOIN users_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var (
			role domain.Role
			code string
		)
		if err := rows.Scan(&role.ID, &code, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		role.Code, err = domain.ParseRoleCode(code)
		if err != nil {
			return nil, fmt.Errorf("role %d: %w", role.ID, err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return roles, nil
}

// Create inserts the user and its role assignments in one transaction.
// Catalogue roles are created lazily on first reference.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string, codes []domain.RoleCode) (*domain.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var u domain.User
	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, password, created_at)
		VALUES ($1, $2, now())
		RETURNING id, username, password, created_at
	`, username, passwordHash).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	for _, code := range codes {
		roleID, err := r.ensureRole(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO users_roles (user_id, role_id) VALUES ($1, $2)
		`, u.ID, roleID); err != nil {
			return nil, fmt.Errorf("assign role %s: %w", code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &u, nil
}

// ensureRole finds a catalogue role by code, creating it if absent.
func (r *UserRepository) ensureRole(ctx context.Context, tx pgx.Tx, code domain.RoleCode) (int64, error) {
	var roleID int64
	err := tx.QueryRow(ctx, `SELECT id FROM roles WHERE code = $1`, string(code)).Scan(&roleID)
	if err == nil {
		return roleID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("query role %s: %w", code, err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO roles (code, name) VALUES ($1, $2) RETURNING id
	`, string(code), string(code)).Scan(&roleID)
	if err != nil {
		return 0, fmt.Errorf("insert role %s: %w", code, err)
	}
	return roleID, nil
}

// Delete removes the user and its role assignments. Outstanding sessions are
// left to dangle; the identity resolver rejects them on next use.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM users_roles WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("delete role assignments: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return tx.Commit(ctx)
}

// ListWithRoles returns every user with its role set, for the admin CLI.
func (r *UserRepository) ListWithRoles(ctx context.Context) ([]ports.UserWithRoles, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, password, created_at FROM users ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []ports.UserWithRoles
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, ports.UserWithRoles{User: u})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	for i := range out {
		roles, err := r.RolesFor(ctx, out[i].User.ID)
		if err != nil {
			return nil, err
		}
		out[i].Roles = roles
	}
	return out, nil
}
