package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/core/domain"
)

const bearerScheme = "bearer"

// TokenVerifier is the part of TokenCodec the resolver depends on.
type TokenVerifier interface {
	Verify(token string, now time.Time) (TokenClaims, error)
}

// Resolver turns an Authorization header into an authenticated Principal.
type Resolver struct {
	tokens TokenVerifier
	log    zerolog.Logger
}

func NewResolver(tokens TokenVerifier, log zerolog.Logger) *Resolver {
	return &Resolver{tokens: tokens, log: log}
}

// Resolve validates header at instant now. An empty header means absent.
// Every token failure collapses to domain.ErrInvalidToken; the precise reason
// is logged and returned as the second value for server-side bookkeeping.
func (r *Resolver) Resolve(header string, now time.Time) (domain.Principal, error) {
	p, _, err := r.ResolveWithReason(header, now)
	return p, err
}

// ResolveWithReason behaves like Resolve and also reports the internal
// rejection reason ("" on success). The reason must never reach the client.
func (r *Resolver) ResolveWithReason(header string, now time.Time) (domain.Principal, string, error) {
	token, ok := bearerToken(header)
	if !ok {
		return domain.Principal{}, "missing_credentials", domain.ErrNotAuthenticated
	}

	claims, err := r.tokens.Verify(token, now)
	if err != nil {
		reason := rejectionReason(err)
		r.log.Debug().Err(err).Str("reason", reason).Msg("bearer token rejected")
		return domain.Principal{}, reason, domain.ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.SubjectID, 10, 64)
	if err != nil || id <= 0 {
		r.log.Debug().Str("reason", "bad_subject").Msg("bearer token rejected")
		return domain.Principal{}, "bad_subject", domain.ErrInvalidToken
	}

	return domain.Principal{
		SubjectID: id,
		Email:     claims.Email,
		Role:      claims.Role,
	}, "", nil
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrInvalidClaims):
		return "invalid_claims"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	default:
		return "unknown"
	}
}
