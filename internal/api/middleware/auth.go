package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/api/metrics"
	"github.com/supportdesk/support-system/internal/core/domain"
)

// PrincipalResolver turns an Authorization header into a principal.
type PrincipalResolver interface {
	ResolveWithReason(header string, now time.Time) (domain.Principal, string, error)
}

// Authenticate resolves the bearer token and injects the principal into the
// context. Failures are returned as domain errors for the error handler.
func Authenticate(resolver PrincipalResolver, now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, reason, err := resolver.ResolveWithReason(c.Request().Header.Get(echo.HeaderAuthorization), now())
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return err
			}
			SetPrincipal(c, p)
			return next(c)
		}
	}
}
