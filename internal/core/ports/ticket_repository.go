package ports

import (
	"context"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// TicketFilter carries the query parameters for listing tickets.
type TicketFilter struct {
	UserID   int64                 // 0 = every owner
	Status   domain.TicketStatus   // optional
	Priority domain.TicketPriority // optional
	Page     int                   // 1-based; 0 disables paging
	Limit    int
}

// TicketRepository defines persistence operations for tickets.
type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error)
	FindByID(ctx context.Context, id int64) (*domain.Ticket, error)
	// List returns tickets matching filter, newest first, and the total count.
	List(ctx context.Context, filter TicketFilter) ([]*domain.Ticket, int64, error)
	// Update overwrites title, description, status, priority and updated_at.
	Update(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error)
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error)
}

// IdempotencyStore remembers which ticket a client-supplied key produced.
type IdempotencyStore interface {
	// Reserve atomically claims key. reserved is true when the caller now owns
	// it; otherwise ticketID is the ticket recorded for it, or the error is
	// domain.ErrIdempotencyInProgress while the owner is still creating it.
	Reserve(ctx context.Context, userID int64, key string) (ticketID int64, reserved bool, err error)
	// Complete records ticketID for a key claimed by Reserve.
	Complete(ctx context.Context, userID int64, key string, ticketID int64) error
	// Release drops a claim so the key can be retried.
	Release(ctx context.Context, userID int64, key string) error
}
