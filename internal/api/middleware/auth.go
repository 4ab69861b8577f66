package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/apoclyps/cr8s/internal/api/metrics"
	"github.com/apoclyps/cr8s/internal/core/domain"
	"github.com/apoclyps/cr8s/internal/core/ports"
)

// userContextKey is where Authenticate stores the resolved *domain.User.
const userContextKey = "auth.user"

// Authenticate resolves the request's bearer token to a user and injects it
// into the echo context for downstream handlers and role checks.
//
// The Authorization header must be exactly "Bearer <token>"; any other shape
// is rejected before any store lookup. A session miss, an expired session,
// and a token whose user has since been deleted all collapse into the same
// 401. Infrastructure failures (session store or directory unreachable) pass
// through to the central error handler as server errors instead.
func Authenticate(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			fields := strings.Fields(header)
			if len(fields) != 2 || fields[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, err := auth.Resolve(c.Request().Context(), fields[1])
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					metrics.SessionResolutionsTotal.WithLabelValues("miss").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
				}
				return err
			}

			metrics.SessionResolutionsTotal.WithLabelValues("hit").Inc()
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user resolved by Authenticate, or nil when the
// middleware has not run on this route.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userContextKey).(*domain.User)
	return user
}

// SetCurrentUser injects a user into the context. Exported for handler tests
// that exercise routes below the Authenticate middleware.
func SetCurrentUser(c echo.Context, user *domain.User) {
	c.Set(userContextKey, user)
}
