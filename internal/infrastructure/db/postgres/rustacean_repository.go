package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apoclyps/cr8s/internal/core/domain"
	"github.com/apoclyps/cr8s/internal/core/ports"
)

// RustaceanRepository is the pgx-backed store for rustaceans.
type RustaceanRepository struct {
	pool *pgxpool.Pool
}

func NewRustaceanRepository(pool *pgxpool.Pool) *RustaceanRepository {
	return &RustaceanRepository{pool: pool}
}

const rustaceanColumns = `id, name, email, created_at`

func scanRustacean(row pgx.Row) (*domain.Rustacean, error) {
	var r domain.Rustacean
	if err := row.Scan(&r.ID, &r.Name, &r.Email, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *RustaceanRepository) FindMultiple(ctx context.Context, limit int) ([]domain.Rustacean, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+rustaceanColumns+` FROM rustaceans ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query rustaceans: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Rustacean, 0, limit)
	for rows.Next() {
		var item domain.Rustacean
		if err := rows.Scan(&item.ID, &item.Name, &item.Email, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rustacean: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rustaceans: %w", err)
	}
	return out, nil
}

func (r *RustaceanRepository) Find(ctx context.Context, id int64) (*domain.Rustacean, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+rustaceanColumns+` FROM rustaceans WHERE id = $1`, id)
	item, err := scanRustacean(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRustaceanNotFound
		}
		return nil, fmt.Errorf("query rustacean: %w", err)
	}
	return item, nil
}

func (r *RustaceanRepository) Create(ctx context.Context, input ports.NewRustacean) (*domain.Rustacean, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO rustaceans (name, email, created_at)
		VALUES ($1, $2, now())
		RETURNING `+rustaceanColumns,
		input.Name, input.Email)
	item, err := scanRustacean(row)
	if err != nil {
		return nil, fmt.Errorf("insert rustacean: %w", err)
	}
	return item, nil
}

func (r *RustaceanRepository) Save(ctx context.Context, id int64, input ports.NewRustacean) (*domain.Rustacean, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE rustaceans SET name = $2, email = $3
		WHERE id = $1
		RETURNING `+rustaceanColumns,
		id, input.Name, input.Email)
	item, err := scanRustacean(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRustaceanNotFound
		}
		return nil, fmt.Errorf("update rustacean: %w", err)
	}
	return item, nil
}

func (r *RustaceanRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rustaceans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rustacean: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRustaceanNotFound
	}
	return nil
}
