package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// DefaultTokenLifetime applies when TokenConfig.Lifetime is not set.
const DefaultTokenLifetime = 30 * time.Minute

// Token verification failures, reported in evaluation order.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("token signature mismatch")
	ErrInvalidClaims  = errors.New("token claims do not match the expected shape")
	ErrTokenExpired   = errors.New("token expired")
)

// TokenConfig configures a TokenCodec. Secret is required.
type TokenConfig struct {
	Secret    string
	Algorithm string
	Lifetime  time.Duration
}

// ClaimsInput is the identity embedded into a new token.
type ClaimsInput struct {
	SubjectID string
	Email     string
	Role      domain.Role
}

// TokenClaims is the fixed-shape decoded form of a verified token.
type TokenClaims struct {
	SubjectID string
	Email     string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// jwtClaims is the wire payload.
type jwtClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies compact HMAC-signed JWTs.
type TokenCodec struct {
	secret   []byte
	method   *jwt.SigningMethodHMAC
	lifetime time.Duration
	parser   *jwt.Parser
}

// NewTokenCodec validates cfg and returns a codec. Only the HMAC family
// (HS256, HS384, HS512) is accepted.
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token codec: secret key is required")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token codec: unsupported algorithm %q", alg)
	}
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}

	return &TokenCodec{
		secret:   []byte(cfg.Secret),
		method:   method,
		lifetime: lifetime,
		// Expiry is checked by Verify itself so the boundary rule and the
		// injected clock stay under our control.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithStrictDecoding(),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Algorithm returns the configured signing algorithm name.
func (c *TokenCodec) Algorithm() string { return c.method.Alg() }

// Lifetime returns how long issued tokens stay valid.
func (c *TokenCodec) Lifetime() time.Duration { return c.lifetime }

// Issue signs a token for in, valid from now until now+lifetime.
func (c *TokenCodec) Issue(in ClaimsInput, now time.Time) (string, error) {
	issuedAt := jwt.NewNumericDate(now)
	claims := jwtClaims{
		Email: in.Email,
		Role:  string(in.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   in.SubjectID,
			IssuedAt:  issuedAt,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Time.Add(c.lifetime)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks token in order: parse, signature, claims shape, expiry.
// The token is still valid when now equals its expiry instant.
func (c *TokenCodec) Verify(token string, now time.Time) (TokenClaims, error) {
	var claims jwtClaims
	_, err := c.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return TokenClaims{}, classify(err)
	}

	role := domain.Role(claims.Role)
	if claims.Subject == "" || claims.Email == "" || !role.Valid() ||
		claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return TokenClaims{}, ErrInvalidClaims
	}

	if now.After(claims.ExpiresAt.Time) {
		return TokenClaims{}, ErrTokenExpired
	}

	return TokenClaims{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Role:      role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
