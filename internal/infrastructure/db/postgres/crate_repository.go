package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apoclyps/cr8s/internal/core/domain"
	"github.com/apoclyps/cr8s/internal/core/ports"
)

// CrateRepository is the pgx-backed store for crates.
type CrateRepository struct {
	pool *pgxpool.Pool
}

func NewCrateRepository(pool *pgxpool.Pool) *CrateRepository {
	return &CrateRepository{pool: pool}
}

const crateColumns = `id, rustacean_id, code, name, version, description, created_at`

func scanCrate(row pgx.Row) (*domain.Crate, error) {
	var c domain.Crate
	if err := row.Scan(&c.ID, &c.RustaceanID, &c.Code, &c.Name, &c.Version, &c.Description, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CrateRepository) collect(rows pgx.Rows) ([]domain.Crate, error) {
	defer rows.Close()

	var out []domain.Crate
	for rows.Next() {
		var c domain.Crate
		if err := rows.Scan(&c.ID, &c.RustaceanID, &c.Code, &c.Name, &c.Version, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan crate: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crates: %w", err)
	}
	return out, nil
}

func (r *CrateRepository) FindMultiple(ctx context.Context, limit int) ([]domain.Crate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+crateColumns+` FROM crates ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query crates: %w", err)
	}
	return r.collect(rows)
}

func (r *CrateRepository) FindSince(ctx context.Context, cutoff time.Time) ([]domain.Crate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+crateColumns+` FROM crates WHERE created_at > $1 ORDER BY id DESC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query crates since %s: %w", cutoff, err)
	}
	return r.collect(rows)
}

func (r *CrateRepository) Find(ctx context.Context, id int64) (*domain.Crate, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+crateColumns+` FROM crates WHERE id = $1`, id)
	crate, err := scanCrate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCrateNotFound
		}
		return nil, fmt.Errorf("query crate: %w", err)
	}
	return crate, nil
}

func (r *CrateRepository) Create(ctx context.Context, input ports.NewCrate) (*domain.Crate, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO crates (rustacean_id, code, name, version, description, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING `+crateColumns,
		input.RustaceanID, input.Code, input.Name, input.Version, input.Description)
	crate, err := scanCrate(row)
	if err != nil {
		return nil, fmt.Errorf("insert crate: %w", err)
	}
	return crate, nil
}

func (r *CrateRepository) Save(ctx context.Context, id int64, input ports.NewCrate) (*domain.Crate, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE crates SET rustacean_id = $2, code = $3, name = $4, version = $5, description = $6
		WHERE id = $1
		RETURNING `+crateColumns,
		id, input.RustaceanID, input.Code, input.Name, input.Version, input.Description)
	crate, err := scanCrate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCrateNotFound
		}
		return nil, fmt.Errorf("update crate: %w", err)
	}
	return crate, nil
}

func (r *CrateRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM crates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete crate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCrateNotFound
	}
	return nil
}
