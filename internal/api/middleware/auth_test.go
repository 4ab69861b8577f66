package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/apoclyps/cr8s/internal/core/domain"
)

// stubAuthService resolves a single known token.
type stubAuthService struct {
	token string
	user  *domain.User
	err   error
}

func (s *stubAuthService) Login(context.Context, string, string) (string, error) {
	return "", domain.ErrInvalidCredentials
}

func (s *stubAuthService) Resolve(_ context.Context, token string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token == s.token {
		clone := *s.user
		return &clone, nil
	}
	return nil, domain.ErrUnauthenticated
}

func runAuthenticate(t *testing.T, svc *stubAuthService, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Authenticate(svc)(next)
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthenticate_ValidToken(t *testing.T) {
	svc := &stubAuthService{token: "tok", user: &domain.User{ID: 1, Username: "alice"}}

	called := false
	rec := runAuthenticate(t, svc, "Bearer tok", func(c echo.Context) error {
		called = true
		user := CurrentUser(c)
		if user == nil || user.Username != "alice" {
			t.Fatalf("resolved user not in context: %+v", user)
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_RejectedShapes(t *testing.T) {
	svc := &stubAuthService{token: "tok", user: &domain.User{ID: 1}}

	// Any header not matching exactly "Bearer <token>" is rejected with no
	// store lookup attempted.
	headers := []string{
		"",
		"tok",
		"Bearer",
		"Bearer tok extra",
		"bearer tok",
		"Token tok",
	}
	for _, header := range headers {
		rec := runAuthenticate(t, svc, header, func(c echo.Context) error {
			t.Fatalf("next reached for header %q", header)
			return nil
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthenticate_UnknownToken(t *testing.T) {
	svc := &stubAuthService{token: "tok", user: &domain.User{ID: 1}}

	rec := runAuthenticate(t, svc, "Bearer wrong", func(c echo.Context) error {
		t.Fatalf("next reached with unknown token")
		return nil
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticate_StoreOutageIsServerError(t *testing.T) {
	svc := &stubAuthService{err: context.DeadlineExceeded}

	rec := runAuthenticate(t, svc, "Bearer tok", func(c echo.Context) error {
		t.Fatalf("next reached during store outage")
		return nil
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("outage must be a 5xx, got %d", rec.Code)
	}
}
