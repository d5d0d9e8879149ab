package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/core/auth"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type TicketService struct {
	repo   ports.TicketRepository
	idem   ports.IdempotencyStore
	now    func() time.Time
	logger zerolog.Logger
}

// NewTicketService wires a TicketService. A nil idempotency store disables
// Idempotency-Key handling; a nil clock defaults to time.Now.
func NewTicketService(repo ports.TicketRepository, idem ports.IdempotencyStore, now func() time.Time, logger zerolog.Logger) *TicketService {
	if now == nil {
		now = time.Now
	}
	return &TicketService{repo: repo, idem: idem, now: now, logger: logger}
}

// Create opens a ticket owned by p. With an idempotency key the key is
// reserved first: a key already bound to a ticket replays it without side
// effects, and a key held by a concurrent request yields
// domain.ErrIdempotencyInProgress. Store outages degrade to a plain create.
func (s *TicketService) Create(ctx context.Context, p domain.Principal, in ports.CreateTicketInput) (*ports.CreateTicketResult, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	reserved := false

	if key != "" && s.idem != nil {
		existing, owned, err := s.reserve(ctx, p, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &ports.CreateTicketResult{Ticket: existing, Replayed: true}, nil
		}
		reserved = owned
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.Ticket{
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusOpen,
		Priority:    domain.PriorityMedium,
		UserID:      p.SubjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", p.SubjectID).Msg("failed to create ticket")
		if reserved {
			if rerr := s.idem.Release(ctx, p.SubjectID, key); rerr != nil {
				s.logger.Warn().Err(rerr).Str("idempotency_key", key).Msg("failed to release idempotency key")
			}
		}
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	if reserved {
		if err := s.idem.Complete(ctx, p.SubjectID, key, created.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotency key")
		}
	}

	s.logger.Info().Int64("ticket_id", created.ID).Int64("user_id", p.SubjectID).Msg("ticket created")

	return &ports.CreateTicketResult{Ticket: created}, nil
}

// reserve claims key for p. It returns the previously created ticket when the
// key was already used, or owned=true when the caller must create the ticket
// and complete the key. A ticket deleted since its key was recorded is
// created again under the same key.
func (s *TicketService) reserve(ctx context.Context, p domain.Principal, key string) (existing *domain.Ticket, owned bool, err error) {
	id, reserved, err := s.idem.Reserve(ctx, p.SubjectID, key)
	switch {
	case errors.Is(err, domain.ErrIdempotencyInProgress):
		return nil, false, err
	case err != nil:
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency reserve failed, creating anyway")
		return nil, false, nil
	case reserved:
		return nil, true, nil
	}

	existing, err = s.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrTicketNotFound) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create ticket: load replayed ticket %d: %w", id, err)
	}
	s.logger.Info().Str("idempotency_key", key).Int64("ticket_id", existing.ID).Msg("idempotent replay")
	return existing, false, nil
}

// Get returns ticket id if p owns it or is staff.
func (s *TicketService) Get(ctx context.Context, p domain.Principal, id int64) (*domain.Ticket, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownerOrStaff(p, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListMine returns every ticket owned by p, newest first.
func (s *TicketService) ListMine(ctx context.Context, p domain.Principal) ([]*domain.Ticket, error) {
	tickets, _, err := s.repo.List(ctx, ports.TicketFilter{UserID: p.SubjectID})
	if err != nil {
		return nil, fmt.Errorf("list own tickets: %w", err)
	}
	return tickets, nil
}

// List is the staff-wide listing with optional status and priority filters.
func (s *TicketService) List(ctx context.Context, p domain.Principal, in ports.ListTicketsInput) (*ports.TicketPage, error) {
	if _, err := auth.RequireAnyOf(p, domain.StaffRoles...); err != nil {
		return nil, err
	}

	var filter ports.TicketFilter
	if in.Status != "" {
		st, err := domain.ParseTicketStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	if in.Priority != "" {
		pr, err := domain.ParseTicketPriority(in.Priority)
		if err != nil {
			return nil, err
		}
		filter.Priority = pr
	}
	filter.Page, filter.Limit = normalizePage(in.Page, in.PageSize)

	tickets, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return &ports.TicketPage{
		Tickets:    tickets,
		Pagination: newPagination(filter.Page, filter.Limit, total),
	}, nil
}

// Update applies the non-nil fields of in. Owners may edit title and
// description; changing status or priority, or editing someone else's
// ticket, requires a staff role.
func (s *TicketService) Update(ctx context.Context, p domain.Principal, id int64, in ports.UpdateTicketInput) (*domain.Ticket, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownerOrStaff(p, t); err != nil {
		return nil, err
	}
	if in.Status != nil || in.Priority != nil {
		if _, err := auth.RequireAnyOf(p, domain.StaffRoles...); err != nil {
			return nil, err
		}
	}

	if in.Status != nil {
		st, err := domain.ParseTicketStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		t.Status = st
	}
	if in.Priority != nil {
		pr, err := domain.ParseTicketPriority(*in.Priority)
		if err != nil {
			return nil, err
		}
		t.Priority = pr
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	t.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("update ticket %d: %w", id, err)
	}

	s.logger.Info().
		Int64("ticket_id", id).
		Int64("user_id", p.SubjectID).
		Str("status", string(updated.Status)).
		Msg("ticket updated")

	return updated, nil
}

// Delete removes ticket id. Only its owner or a manager may do so.
func (s *TicketService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	t, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !p.Owns(t.UserID) {
		if _, err := auth.RequireRole(p, domain.RoleManager); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete ticket %d: %w", id, err)
	}

	s.logger.Info().Int64("ticket_id", id).Int64("user_id", p.SubjectID).Msg("ticket deleted")
	return nil
}

func (s *TicketService) find(ctx context.Context, id int64) (*domain.Ticket, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ticket %d: %w", id, err)
	}
	return t, nil
}

func ownerOrStaff(p domain.Principal, t *domain.Ticket) error {
	if p.Owns(t.UserID) {
		return nil
	}
	_, err := auth.RequireAnyOf(p, domain.StaffRoles...)
	return err
}
