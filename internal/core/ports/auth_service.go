package ports

import (
	"context"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// RegisterInput carries the fields of a new account. Role may be empty.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	AccessToken string
	TokenType   string
	User        *domain.User
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Me(ctx context.Context, p domain.Principal) (*domain.User, error)
}

// UserService covers user lookups and admin-driven account creation.
type UserService interface {
	Get(ctx context.Context, p domain.Principal, id int64) (*domain.User, error)
	Create(ctx context.Context, p domain.Principal, in RegisterInput) (*domain.User, error)
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page     int
	PageSize int
	Total    int64
	Pages    int
}

// UserPage is returned by AdminService.ListUsers.
type UserPage struct {
	Users      []*domain.User
	Pagination Pagination
}

// MonitoringStats holds live counters for the admin dashboard.
type MonitoringStats struct {
	TotalUsers        int64
	OpenTickets       int64
	InProgressTickets int64
	ClosedTickets     int64
	ActiveTickets     int64
}

type AdminService interface {
	ListUsers(ctx context.Context, p domain.Principal, page, pageSize int) (*UserPage, error)
	ChangeRole(ctx context.Context, p domain.Principal, id int64, role string) (*domain.User, error)
	Monitoring(ctx context.Context, p domain.Principal) (*MonitoringStats, error)
}
