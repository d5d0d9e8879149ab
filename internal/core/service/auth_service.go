package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/core/auth"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

const tokenType = "bearer"

// TokenIssuer is the part of auth.TokenCodec used for login.
type TokenIssuer interface {
	Issue(in auth.ClaimsInput, now time.Time) (string, error)
}

// AuthService implements login, registration and the current-user lookup.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens TokenIssuer
	now    func() time.Time
	log    zerolog.Logger

	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService wires an AuthService. A nil clock defaults to time.Now.
func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens TokenIssuer, now func() time.Time, log zerolog.Logger) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, now: now, log: log}
}

// Login checks the credentials and issues an access token. An unknown email
// and a wrong password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.verifyDecoy(ctx, password)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: verify password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.ClaimsInput{
		SubjectID: strconv.FormatInt(user.ID, 10),
		Email:     user.Email,
		Role:      user.Role,
	}, s.now())
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")

	return &ports.LoginResult{AccessToken: token, TokenType: tokenType, User: user}, nil
}

// Register creates a self-service account. An empty role becomes "user".
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	user, err := createAccount(ctx, s.users, s.hasher, s.now(), in)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

// Me returns the stored account of the authenticated principal.
func (s *AuthService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, p.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}

// verifyDecoy spends one hash verification so a login for an unknown email
// takes about as long as one with a wrong password.
func (s *AuthService) verifyDecoy(ctx context.Context, password string) {
	s.decoyOnce.Do(func() {
		h, err := s.hasher.Hash(context.WithoutCancel(ctx), "decoy-credential")
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare decoy hash")
			return
		}
		s.decoyHash = h
	})
	if s.decoyHash != "" {
		_, _ = s.hasher.Verify(ctx, password, s.decoyHash)
	}
}

// createAccount validates the role, hashes the password and stores the user.
func createAccount(ctx context.Context, users ports.UserRepository, hasher ports.PasswordHasher, now time.Time, in ports.RegisterInput) (*domain.User, error) {
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	hash, err := hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("create account: hash password: %w", err)
	}

	now = now.UTC()
	created, err := users.Create(ctx, &domain.User{
		Email:        domain.NormalizeEmail(in.Email),
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}
