package domain

import "time"

// Crate is a published package owned by a rustacean.
type Crate struct {
	ID          int64     `json:"id"`
	RustaceanID int64     `json:"rustacean_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
