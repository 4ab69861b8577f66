package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/apoclyps/cr8s/internal/core/domain"
	"github.com/apoclyps/cr8s/internal/core/ports"
)

// RequireRole gates a route on the resolved user holding at least one of the
// permitted role codes. It must be composed after Authenticate; a missing
// identity is a 401, an identity without a permitted role is a 403. The role
// set is fetched from the directory on every request so revoked roles take
// effect immediately. No roles, or a failed role lookup, denies access.
func RequireRole(users ports.UserRepository, permitted ...domain.RoleCode) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}

			roles, err := users.RolesFor(c.Request().Context(), user.ID)
			if err != nil {
				return err
			}
			if !domain.HasAnyRole(roles, permitted...) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}

			return next(c)
		}
	}
}
