package ports

import (
	"context"

	"github.com/apoclyps/cr8s/internal/core/domain"
)

// NewRustacean carries the writable fields for create and update.
type NewRustacean struct {
	Name  string
	Email string
}

// RustaceanRepository defines persistence operations for rustaceans.
type RustaceanRepository interface {
	FindMultiple(ctx context.Context, limit int) ([]domain.Rustacean, error)
	Find(ctx context.Context, id int64) (*domain.Rustacean, error)
	Create(ctx context.Context, input NewRustacean) (*domain.Rustacean, error)
	Save(ctx context.Context, id int64, input NewRustacean) (*domain.Rustacean, error)
	Delete(ctx context.Context, id int64) error
}
