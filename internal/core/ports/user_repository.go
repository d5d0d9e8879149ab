package ports

import (
	"context"
	"time"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// UserRepository defines the persistence operations for user accounts.
// Emails are stored normalized; FindByEmail expects a normalized address.
type UserRepository interface {
	// Create assigns an ID and returns the stored user. A duplicate email
	// yields domain.ErrEmailExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// List returns a page of users ordered by ID and the total count.
	List(ctx context.Context, page, limit int) ([]*domain.User, int64, error)
	UpdateRole(ctx context.Context, id int64, role domain.Role, at time.Time) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}
