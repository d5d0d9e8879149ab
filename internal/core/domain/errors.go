package domain

import "errors"

// Authentication and authorization failures. The HTTP layer maps each of these
// to a fixed status and machine-readable code; the mapping is public contract.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Resource errors.
var (
	ErrEmailExists    = errors.New("email already registered")
	ErrUserNotFound   = errors.New("user not found")
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrIdempotencyInProgress is returned while another request holding the
	// same Idempotency-Key is still creating its ticket.
	ErrIdempotencyInProgress = errors.New("idempotency key in use")
)

// Input errors.
var (
	ErrInvalidRole           = errors.New("invalid role")
	ErrInvalidTicketStatus   = errors.New("invalid ticket status")
	ErrInvalidTicketPriority = errors.New("invalid ticket priority")
)
