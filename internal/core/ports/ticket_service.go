package ports

import (
	"context"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// CreateTicketInput carries the data for a new ticket. The owner is always
// the calling principal.
type CreateTicketInput struct {
	Title          string
	Description    string
	IdempotencyKey string
}

// CreateTicketResult is returned by TicketService.Create.
type CreateTicketResult struct {
	Ticket *domain.Ticket
	// Replayed is true when the Idempotency-Key matched an earlier ticket.
	Replayed bool
}

// UpdateTicketInput holds the optional fields of a ticket update. Nil means
// "leave unchanged".
type UpdateTicketInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
}

// ListTicketsInput carries the parameters of the staff listing.
type ListTicketsInput struct {
	Status   string
	Priority string
	Page     int
	PageSize int
}

// TicketPage is returned by TicketService.List.
type TicketPage struct {
	Tickets    []*domain.Ticket
	Pagination Pagination
}

// TicketService defines use-case operations for tickets. Every call receives
// the resolved principal and applies the ownership and role rules itself.
type TicketService interface {
	Create(ctx context.Context, p domain.Principal, in CreateTicketInput) (*CreateTicketResult, error)
	Get(ctx context.Context, p domain.Principal, id int64) (*domain.Ticket, error)
	ListMine(ctx context.Context, p domain.Principal) ([]*domain.Ticket, error)
	List(ctx context.Context, p domain.Principal, in ListTicketsInput) (*TicketPage, error)
	Update(ctx context.Context, p domain.Principal, id int64, in UpdateTicketInput) (*domain.Ticket, error)
	Delete(ctx context.Context, p domain.Principal, id int64) error
}
