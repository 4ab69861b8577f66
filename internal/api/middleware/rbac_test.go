package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/apoclyps/cr8s/internal/core/domain"
	"github.com/apoclyps/cr8s/internal/core/ports"
)

// stubRoleDirectory implements ports.UserRepository; only RolesFor matters.
type stubRoleDirectory struct {
	roles    map[int64][]domain.Role
	rolesErr error
}

func (r *stubRoleDirectory) RolesFor(_ context.Context, userID int64) ([]domain.Role, error) {
	if r.rolesErr != nil {
		return nil, r.rolesErr
	}
	return r.roles[userID], nil
}

func (r *stubRoleDirectory) FindByID(context.Context, int64) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *stubRoleDirectory) FindByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *stubRoleDirectory) Create(context.Context, string, string, []domain.RoleCode) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (r *stubRoleDirectory) Delete(context.Context, int64) error {
	return errors.New("not implemented")
}

func (r *stubRoleDirectory) ListWithRoles(context.Context) ([]ports.UserWithRoles, error) {
	return nil, errors.New("not implemented")
}

func runRequireRole(t *testing.T, dir *stubRoleDirectory, user *domain.User, permitted ...domain.RoleCode) (*httptest.ResponseRecorder, *bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		SetCurrentUser(c, user)
	}

	called := false
	handler := RequireRole(dir, permitted...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, &called
}

func TestRequireRole_EditorOrAbove(t *testing.T) {
	cases := []struct {
		name  string
		roles []domain.Role
		want  int
	}{
		{"admin allowed", []domain.Role{{ID: 1, Code: domain.RoleAdmin}}, http.StatusOK},
		{"editor allowed", []domain.Role{{ID: 2, Code: domain.RoleEditor}}, http.StatusOK},
		{"viewer denied", []domain.Role{{ID: 3, Code: domain.RoleViewer}}, http.StatusForbidden},
		{"no roles denied", nil, http.StatusForbidden},
		{"mixed viewer+editor allowed", []domain.Role{{ID: 3, Code: domain.RoleViewer}, {ID: 2, Code: domain.RoleEditor}}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := &stubRoleDirectory{roles: map[int64][]domain.Role{1: tc.roles}}
			rec, called := runRequireRole(t, dir, &domain.User{ID: 1}, domain.RoleAdmin, domain.RoleEditor)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if *called != (tc.want == http.StatusOK) {
				t.Fatalf("next called = %v for status %d", *called, rec.Code)
			}
		})
	}
}

func TestRequireRole_MissingIdentity(t *testing.T) {
	dir := &stubRoleDirectory{roles: map[int64][]domain.Role{}}
	rec, called := runRequireRole(t, dir, nil, domain.RoleAdmin)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if *called {
		t.Fatalf("next must not run without an identity")
	}
}

func TestRequireRole_LookupFailureDenies(t *testing.T) {
	dir := &stubRoleDirectory{rolesErr: errors.New("pg: connection reset")}
	rec, called := runRequireRole(t, dir, &domain.User{ID: 1}, domain.RoleAdmin)
	if *called {
		t.Fatalf("next must not run when the role lookup fails")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for infrastructure failure, got %d", rec.Code)
	}
}
