package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// principalKey is the echo context key Authenticate stores the caller under.
const principalKey = "principal"

// SetPrincipal stores p on the request context.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the principal stored by Authenticate.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}
