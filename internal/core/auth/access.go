package auth

import (
	"fmt"
	"strings"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// RequireRole returns p unchanged when it holds required or is an admin.
func RequireRole(p domain.Principal, required domain.Role) (domain.Principal, error) {
	if p.Role == domain.RoleAdmin || p.Role == required {
		return p, nil
	}
	return domain.Principal{}, fmt.Errorf("%w: requires %s role", domain.ErrForbidden, required)
}

// RequireAnyOf returns p unchanged when its role is in allowed or it is an admin.
func RequireAnyOf(p domain.Principal, allowed ...domain.Role) (domain.Principal, error) {
	if p.Role == domain.RoleAdmin {
		return p, nil
	}
	for _, r := range allowed {
		if p.Role == r {
			return p, nil
		}
	}
	return domain.Principal{}, fmt.Errorf("%w: requires one of %s", domain.ErrForbidden, joinRoles(allowed))
}

// RequireAdmin is RequireRole(p, admin).
func RequireAdmin(p domain.Principal) (domain.Principal, error) {
	return RequireRole(p, domain.RoleAdmin)
}

func joinRoles(roles []domain.Role) string {
	if len(roles) == 0 {
		return "[]"
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
