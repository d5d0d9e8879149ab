package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/supportdesk/support-system/internal/core/auth"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// AdminService backs the administrator-only endpoints.
type AdminService struct {
	users   ports.UserRepository
	tickets ports.TicketRepository
	now     func() time.Time
	log     zerolog.Logger
}

func NewAdminService(users ports.UserRepository, tickets ports.TicketRepository, now func() time.Time, log zerolog.Logger) *AdminService {
	if now == nil {
		now = time.Now
	}
	return &AdminService{users: users, tickets: tickets, now: now, log: log}
}

func (s *AdminService) ListUsers(ctx context.Context, p domain.Principal, page, pageSize int) (*ports.UserPage, error) {
	if _, err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	page, pageSize = normalizePage(page, pageSize)

	users, total, err := s.users.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ports.UserPage{Users: users, Pagination: newPagination(page, pageSize, total)}, nil
}

// ChangeRole sets the role of user id. An empty role is rejected.
func (s *AdminService) ChangeRole(ctx context.Context, p domain.Principal, id int64, role string) (*domain.User, error) {
	if _, err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(role) == "" {
		return nil, domain.ErrInvalidRole
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateRole(ctx, id, r, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("change role of user %d: %w", id, err)
	}

	s.log.Info().
		Int64("user_id", id).
		Str("role", string(r)).
		Int64("changed_by", p.SubjectID).
		Msg("user role changed")

	return user, nil
}

// Monitoring gathers live user and ticket counts concurrently.
func (s *AdminService) Monitoring(ctx context.Context, p domain.Principal) (*ports.MonitoringStats, error) {
	if _, err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}

	var (
		totalUsers int64
		byStatus   map[domain.TicketStatus]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.users.Count(gctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		totalUsers = n
		return nil
	})
	g.Go(func() error {
		m, err := s.tickets.CountByStatus(gctx)
		if err != nil {
			return fmt.Errorf("count tickets: %w", err)
		}
		byStatus = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &ports.MonitoringStats{
		TotalUsers:        totalUsers,
		OpenTickets:       byStatus[domain.StatusOpen],
		InProgressTickets: byStatus[domain.StatusInProgress],
		ClosedTickets:     byStatus[domain.StatusClosed],
	}
	stats.ActiveTickets = stats.OpenTickets + stats.InProgressTickets
	return stats, nil
}
