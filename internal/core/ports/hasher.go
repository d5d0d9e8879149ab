package ports

import "context"

// PasswordHasher hashes and verifies credentials. Implementations may run the
// work on a bounded pool, so both calls honour ctx cancellation.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}
