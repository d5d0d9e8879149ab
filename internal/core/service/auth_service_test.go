package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/core/auth"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

var clockNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func newAuthSvc(t *testing.T, repo *stubUserRepo, hasher *fakeHasher) (*AuthService, *auth.TokenCodec) {
	t.Helper()
	codec, err := auth.NewTokenCodec(auth.TokenConfig{Secret: "secret"})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return NewAuthService(repo, hasher, codec, fixedClock(clockNow), zerolog.Nop()), codec
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(t, repo, &fakeHasher{})

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:    "  Alice@Example.com ",
		Password: "pass123",
		FullName: "Alice",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected an assigned id")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "pass123" || user.PasswordHash == "" {
		t.Fatalf("expected password to be hashed, got %q", user.PasswordHash)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", user.Role)
	}
	if !user.CreatedAt.Equal(clockNow) {
		t.Fatalf("unexpected created_at: %v", user.CreatedAt)
	}
}

func TestAuthService_Register_ExplicitRole(t *testing.T) {
	svc, _ := newAuthSvc(t, newStubUserRepo(), &fakeHasher{})

	user, err := svc.Register(context.Background(), ports.RegisterInput{Email: "op@example.com", Password: "pass123", Role: "operator"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != domain.RoleOperator {
		t.Fatalf("expected operator, got %s", user.Role)
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(t, repo, &fakeHasher{})

	_, err := svc.Register(context.Background(), ports.RegisterInput{Email: "bob@example.com", Password: "pass123", Role: "superuser"})
	if !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if n, _ := repo.Count(context.Background()); n != 0 {
		t.Fatalf("nothing must be stored on invalid role")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _ := newAuthSvc(t, newStubUserRepo(), &fakeHasher{})

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Email: "bob@example.com", Password: "pass123"})
	_, err := svc.Register(context.Background(), ports.RegisterInput{Email: "BOB@example.com", Password: "other12"})
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestAuthService_Register_HashFailure(t *testing.T) {
	hashErr := errors.New("pool closed")
	svc, _ := newAuthSvc(t, newStubUserRepo(), &fakeHasher{hashErr: hashErr})

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Email: "x@example.com", Password: "pass123"}); !errors.Is(err, hashErr) {
		t.Fatalf("expected hash error to propagate, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newAuthSvc(t, repo, &fakeHasher{})

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Email: "a@b.com", Password: "secret1", Role: "manager"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), "A@B.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.AccessToken == "" {
		t.Fatalf("expected token, got empty")
	}
	if res.TokenType != "bearer" {
		t.Fatalf("unexpected token type %q", res.TokenType)
	}
	if res.User.Role != domain.RoleManager || res.User.Email != "a@b.com" {
		t.Fatalf("unexpected user: %+v", res.User)
	}

	claims, err := codec.Verify(res.AccessToken, clockNow)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.SubjectID != "1" || claims.Role != domain.RoleManager || claims.Email != "a@b.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(clockNow.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, _ := newAuthSvc(t, newStubUserRepo(), &fakeHasher{})

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Email: "dave@example.com", Password: "goodpass"})
	if _, err := svc.Login(context.Background(), "dave@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmailLooksLikeBadPassword(t *testing.T) {
	hasher := &fakeHasher{}
	svc, _ := newAuthSvc(t, newStubUserRepo(), hasher)

	if _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if hasher.verifies != 1 {
		t.Fatalf("expected one decoy verification, got %d", hasher.verifies)
	}
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	svc, _ := newAuthSvc(t, newStubUserRepo(), &fakeHasher{})

	for _, in := range [][2]string{{"", "pass"}, {"a@b.com", ""}, {"   ", "pass"}} {
		if _, err := svc.Login(context.Background(), in[0], in[1]); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%v: expected ErrInvalidCredentials, got %v", in, err)
		}
	}
}

func TestAuthService_Login_RepositoryFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("connection reset")
	svc, _ := newAuthSvc(t, repo, &fakeHasher{})

	_, err := svc.Login(context.Background(), "a@b.com", "secret1")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected an internal error, got %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(t, repo, &fakeHasher{})
	repo.seed(domain.User{ID: 7, Email: "me@example.com", Role: domain.RoleOperator})

	user, err := svc.Me(context.Background(), principalOf(7, domain.RoleOperator))
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if user.Email != "me@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := svc.Me(context.Background(), principalOf(99, domain.RoleUser)); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
