package domain

import (
	"fmt"
	"time"
)

// RoleCode is the closed set of privilege levels known to the system.
type RoleCode string

const (
	RoleAdmin  RoleCode = "admin"
	RoleEditor RoleCode = "editor"
	RoleViewer RoleCode = "viewer"
)

// ParseRoleCode converts a raw string (persistence row, CLI argument) into a
// RoleCode. Unknown strings are a hard error, never a silent downgrade.
func ParseRoleCode(s string) (RoleCode, error) {
	switch RoleCode(s) {
	case RoleAdmin, RoleEditor, RoleViewer:
		return RoleCode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRoleCode, s)
}

// User models an authenticated actor. The password hash never leaves the
// process in a serialized form.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role is one entry of the fixed role catalogue.
type Role struct {
	ID   int64    `json:"id"`
	Code RoleCode `json:"code"`
	Name string   `json:"name"`
}

// HasAnyRole reports whether at least one of the given roles carries one of
// the permitted codes. An empty role set never grants access.
func HasAnyRole(roles []Role, permitted ...RoleCode) bool {
	for _, r := range roles {
		for _, code := range permitted {
			if r.Code == code {
				return true
			}
		}
	}
	return false
}
