package domain

import "time"

// Rustacean is a person who publishes crates.
type Rustacean struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
