package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/core/auth"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type UserService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	now    func() time.Time
	log    zerolog.Logger
}

func NewUserService(users ports.UserRepository, hasher ports.PasswordHasher, now func() time.Time, log zerolog.Logger) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, hasher: hasher, now: now, log: log}
}

// Get returns user id. Callers may read their own account; staff may read any.
func (s *UserService) Get(ctx context.Context, p domain.Principal, id int64) (*domain.User, error) {
	if !p.Owns(id) {
		if _, err := auth.RequireAnyOf(p, domain.StaffRoles...); err != nil {
			return nil, err
		}
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// Create lets an administrator open an account with any role.
func (s *UserService) Create(ctx context.Context, p domain.Principal, in ports.RegisterInput) (*domain.User, error) {
	if _, err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	user, err := createAccount(ctx, s.users, s.hasher, s.now(), in)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("user_id", user.ID).
		Str("role", string(user.Role)).
		Int64("created_by", p.SubjectID).
		Msg("user created by admin")
	return user, nil
}
