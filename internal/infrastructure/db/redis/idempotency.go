package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/supportdesk/support-system/internal/core/domain"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// pendingTTL bounds how long a crashed request can hold a key.
	pendingTTL    = time.Minute
	pendingMarker = "pending"
)

// IdempotencyStore maps a user's Idempotency-Key to the ticket it created.
// Key format: idem:ticket:<user_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. Keys expire after ttl (24h when <= 0).
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve claims key with SETNX and a pending marker. If the key is taken it
// reports the recorded ticket, or domain.ErrIdempotencyInProgress while the
// marker is still pending.
func (s *IdempotencyStore) Reserve(ctx context.Context, userID int64, key string) (int64, bool, error) {
	k := idempotencyKey(userID, key)
	// A second round covers the key expiring between SETNX and GET.
	for range 2 {
		ok, err := s.client.SetNX(ctx, k, pendingMarker, pendingTTL).Result()
		if err != nil {
			return 0, false, fmt.Errorf("idempotency reserve: %w", err)
		}
		if ok {
			return 0, true, nil
		}

		val, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return 0, false, fmt.Errorf("idempotency reserve: %w", err)
		}
		return parseReservation(val)
	}
	return 0, false, fmt.Errorf("idempotency reserve: key %q kept expiring", key)
}

// Complete overwrites the pending marker with ticketID for the full TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, userID int64, key string, ticketID int64) error {
	if err := s.client.Set(ctx, idempotencyKey(userID, key), ticketID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release deletes the key so a failed create can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, userID int64, key string) error {
	if err := s.client.Del(ctx, idempotencyKey(userID, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func parseReservation(val string) (int64, bool, error) {
	if val == pendingMarker {
		return 0, false, domain.ErrIdempotencyInProgress
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency reserve: corrupt value %q: %w", val, err)
	}
	return id, false, nil
}

func idempotencyKey(userID int64, key string) string {
	return fmt.Sprintf("idem:ticket:%d:%s", userID, key)
}
