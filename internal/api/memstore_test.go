package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// memUsers and memTickets are in-memory repositories for router tests.
type memUsers struct {
	mu    sync.Mutex
	users []*domain.User
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, domain.ErrEmailExists
		}
	}
	cp := *u
	cp.ID = int64(len(m.users) + 1)
	m.users = append(m.users, &cp)
	out := cp
	return &out, nil
}

func (m *memUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.Email == email })
}

func (m *memUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.ID == id })
}

func (m *memUsers) List(_ context.Context, page, limit int) ([]*domain.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := (page - 1) * limit
	if start > len(m.users) {
		start = len(m.users)
	}
	end := min(start+limit, len(m.users))
	out := make([]*domain.User, 0, end-start)
	for _, u := range m.users[start:end] {
		cp := *u
		out = append(out, &cp)
	}
	return out, int64(len(m.users)), nil
}

func (m *memUsers) UpdateRole(_ context.Context, id int64, role domain.Role, at time.Time) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			u.Role, u.UpdatedAt = role, at
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

type memTickets struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]*domain.Ticket
}

func newMemTickets() *memTickets {
	return &memTickets{tickets: make(map[int64]*domain.Ticket)}
}

func (m *memTickets) Create(_ context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *t
	cp.ID = m.nextID
	m.tickets[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memTickets) FindByID(_ context.Context, id int64) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTickets) List(_ context.Context, f ports.TicketFilter) ([]*domain.Ticket, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*domain.Ticket
	for _, t := range m.tickets {
		if (f.UserID == 0 || t.UserID == f.UserID) &&
			(f.Status == "" || t.Status == f.Status) &&
			(f.Priority == "" || t.Priority == f.Priority) {
			cp := *t
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if f.Page > 0 && f.Limit > 0 {
		start := min((f.Page-1)*f.Limit, len(all))
		all = all[start:min(start+f.Limit, len(all))]
	}
	return all, total, nil
}

func (m *memTickets) Update(_ context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[t.ID]; !ok {
		return nil, domain.ErrTicketNotFound
	}
	cp := *t
	m.tickets[t.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memTickets) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[id]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(m.tickets, id)
	return nil
}

func (m *memTickets) CountByStatus(context.Context) (map[domain.TicketStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.TicketStatus]int64)
	for _, t := range m.tickets {
		out[t.Status]++
	}
	return out, nil
}
