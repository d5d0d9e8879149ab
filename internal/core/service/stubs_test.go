package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu       sync.Mutex
	users    map[int64]*domain.User
	nextID   int64
	findErr  error // if set, FindByEmail and FindByID return this error
	countErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailExists
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context, page, limit int) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id int64, role domain.Role, at time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = at
	return cloneUser(u), nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	return int64(len(r.users)), nil
}

// seed stores u as-is (ID included) and returns it.
func (r *stubUserRepo) seed(u domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID > r.nextID {
		r.nextID = u.ID
	}
	r.users[u.ID] = cloneUser(&u)
	return &u
}

type stubTicketRepo struct {
	mu        sync.Mutex
	tickets   map[int64]*domain.Ticket
	nextID    int64
	createErr error // if set, Create returns this error
	lastList  ports.TicketFilter
	creates   int
}

func newStubTicketRepo() *stubTicketRepo {
	return &stubTicketRepo{tickets: make(map[int64]*domain.Ticket)}
}

func cloneTicket(t *domain.Ticket) *domain.Ticket {
	clone := *t
	return &clone
}

func (r *stubTicketRepo) Create(_ context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.creates++
	r.nextID++
	stored := cloneTicket(t)
	stored.ID = r.nextID
	r.tickets[stored.ID] = stored
	return cloneTicket(stored), nil
}

func (r *stubTicketRepo) FindByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return cloneTicket(t), nil
}

// List applies the same filters and ordering the real repositories use.
func (r *stubTicketRepo) List(_ context.Context, f ports.TicketFilter) ([]*domain.Ticket, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = f

	var matched []*domain.Ticket
	for _, t := range r.tickets {
		if f.UserID != 0 && t.UserID != f.UserID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		matched = append(matched, cloneTicket(t))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return paginate(matched, f.Page, f.Limit), int64(len(matched)), nil
}

func (r *stubTicketRepo) Update(_ context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[t.ID]; !ok {
		return nil, domain.ErrTicketNotFound
	}
	r.tickets[t.ID] = cloneTicket(t)
	return cloneTicket(t), nil
}

func (r *stubTicketRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *stubTicketRepo) CountByStatus(_ context.Context) (map[domain.TicketStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domain.TicketStatus]int64)
	for _, t := range r.tickets {
		out[t.Status]++
	}
	return out, nil
}

func (r *stubTicketRepo) seed(t domain.Ticket) *domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID > r.nextID {
		r.nextID = t.ID
	}
	r.tickets[t.ID] = cloneTicket(&t)
	return &t
}

func paginate[T any](items []T, page, limit int) []T {
	if page <= 0 || limit <= 0 {
		return items
	}
	skip := (page - 1) * limit
	if skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

// stubIdempotency mimics the Redis store: a reserved key is pending until
// Complete binds it to a ticket.
type stubIdempotency struct {
	mu          sync.Mutex
	keys        map[string]int64
	pending     map[string]bool
	reserveErr  error
	completeErr error
	releases    int
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]int64), pending: make(map[string]bool)}
}

func (s *stubIdempotency) Reserve(_ context.Context, userID int64, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reserveErr != nil {
		return 0, false, s.reserveErr
	}
	k := idemKey(userID, key)
	if s.pending[k] {
		return 0, false, domain.ErrIdempotencyInProgress
	}
	if id, ok := s.keys[k]; ok {
		return id, false, nil
	}
	s.pending[k] = true
	return 0, true, nil
}

func (s *stubIdempotency) Complete(_ context.Context, userID int64, key string, ticketID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completeErr != nil {
		return s.completeErr
	}
	k := idemKey(userID, key)
	delete(s.pending, k)
	s.keys[k] = ticketID
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, userID int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := idemKey(userID, key)
	delete(s.pending, k)
	delete(s.keys, k)
	s.releases++
	return nil
}

func idemKey(userID int64, key string) string {
	return fmt.Sprintf("%d:%s", userID, key)
}

// ---------------------------------------------------------------------------
// Hasher and token stubs
// ---------------------------------------------------------------------------

// fakeHasher is a reversible stand-in for bcrypt so tests stay fast.
type fakeHasher struct {
	mu       sync.Mutex
	verifies int
	hashErr  error
}

func (h *fakeHasher) Hash(_ context.Context, plaintext string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + plaintext, nil
}

func (h *fakeHasher) Verify(_ context.Context, plaintext, hash string) (bool, error) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return hash == "hashed:"+plaintext, nil
}

func principalOf(id int64, role domain.Role) domain.Principal {
	return domain.Principal{SubjectID: id, Email: "u@example.com", Role: role}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
