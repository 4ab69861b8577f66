package ports

import (
	"context"
	"time"

	"github.com/apoclyps/cr8s/internal/core/domain"
)

// NewCrate carries the writable fields for create and update.
type NewCrate struct {
	RustaceanID int64
	Code        string
	Name        string
	Version     string
	Description *string
}

// CrateRepository defines persistence operations for crates.
type CrateRepository interface {
	FindMultiple(ctx context.Context, limit int) ([]domain.Crate, error)
	// FindSince returns crates created after the cutoff, newest first.
	FindSince(ctx context.Context, cutoff time.Time) ([]domain.Crate, error)
	Find(ctx context.Context, id int64) (*domain.Crate, error)
	Create(ctx context.Context, input NewCrate) (*domain.Crate, error)
	Save(ctx context.Context, id int64, input NewCrate) (*domain.Crate, error)
	Delete(ctx context.Context, id int64) error
}
