package domain

import (
	"strings"
	"time"
)

// Role is the coarse-grained authorization tag carried by users and tokens.
type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Roles lists the closed set of roles in declaration order.
var Roles = []Role{RoleUser, RoleOperator, RoleManager, RoleAdmin}

// StaffRoles may work on tickets they do not own.
var StaffRoles = []Role{RoleOperator, RoleManager}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOperator, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts raw input into a Role. An empty string yields RoleUser.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleUser, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// User models an account able to log in and own tickets.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
