package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/api/metrics"
	"github.com/supportdesk/support-system/internal/core/auth"
	"github.com/supportdesk/support-system/internal/core/domain"
)

// RequireRole admits principals holding role (admins always pass).
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return guard(func(p domain.Principal) (domain.Principal, error) {
		return auth.RequireRole(p, role)
	})
}

// RequireAnyOf admits principals holding one of roles (admins always pass).
func RequireAnyOf(roles ...domain.Role) echo.MiddlewareFunc {
	return guard(func(p domain.Principal) (domain.Principal, error) {
		return auth.RequireAnyOf(p, roles...)
	})
}

// RequireAdmin admits admins only.
func RequireAdmin() echo.MiddlewareFunc {
	return guard(auth.RequireAdmin)
}

// guard must run after Authenticate.
func guard(check func(domain.Principal) (domain.Principal, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrNotAuthenticated
			}
			if _, err := check(p); err != nil {
				metrics.AccessDeniedTotal.WithLabelValues(c.Path()).Inc()
				return err
			}
			return next(c)
		}
	}
}
