package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/supportdesk/support-system/internal/core/auth"
)

// gatedHasher blocks every call until release is closed.
type gatedHasher struct {
	started chan struct{}
	release chan struct{}
}

func newGatedHasher() *gatedHasher {
	return &gatedHasher{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (g *gatedHasher) Hash(plaintext string) (string, error) {
	g.started <- struct{}{}
	<-g.release
	return "h:" + plaintext, nil
}

func (g *gatedHasher) Verify(plaintext, hash string) bool {
	g.started <- struct{}{}
	<-g.release
	return hash == "h:"+plaintext
}

func TestHashPool_RoundTripConcurrent(t *testing.T) {
	pool := NewHashPool(3, auth.NewBcryptHasher(bcrypt.MinCost), zerolog.Nop())
	pool.Start(context.Background())
	defer pool.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 12)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := pool.Hash(context.Background(), "secret1")
			if err != nil {
				errs <- err
				return
			}
			ok, err := pool.Verify(context.Background(), "secret1", h)
			if err != nil {
				errs <- err
				return
			}
			if !ok {
				errs <- errors.New("verify returned false for matching password")
			}
			bad, _ := pool.Verify(context.Background(), "secret2", h)
			if bad {
				errs <- errors.New("verify returned true for wrong password")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestHashPool_HashErrorPropagates(t *testing.T) {
	pool := NewHashPool(1, auth.NewBcryptHasher(bcrypt.MinCost), zerolog.Nop())
	pool.Start(context.Background())
	defer pool.Close()

	if _, err := pool.Hash(context.Background(), ""); !errors.Is(err, auth.ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestHashPool_ContextCancelledWhileWaiting(t *testing.T) {
	g := newGatedHasher()
	pool := NewHashPool(1, g, zerolog.Nop())
	pool.Start(context.Background())
	defer pool.Close()
	defer close(g.release)

	go func() { _, _ = pool.Hash(context.Background(), "busy") }()
	<-g.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := pool.Hash(ctx, "queued"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestHashPool_ContextCancelledWhileRunning(t *testing.T) {
	g := newGatedHasher()
	pool := NewHashPool(1, g, zerolog.Nop())
	pool.Start(context.Background())
	defer pool.Close()
	defer close(g.release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-g.started
		cancel()
	}()
	if _, err := pool.Verify(ctx, "pw", "h:pw"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected Canceled, got %v", err)
	}
}

func TestHashPool_Close(t *testing.T) {
	pool := NewHashPool(2, auth.NewBcryptHasher(bcrypt.MinCost), zerolog.Nop())
	pool.Start(context.Background())
	pool.Close()
	pool.Close()

	if _, err := pool.Hash(context.Background(), "secret1"); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	if _, err := pool.Verify(context.Background(), "secret1", "x"); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestHashPool_StopsWithStartContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewHashPool(1, auth.NewBcryptHasher(bcrypt.MinCost), zerolog.Nop())
	pool.Start(ctx)
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := pool.Hash(context.Background(), "secret1"); errors.Is(err, ErrPoolClosed) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("pool did not close after its start context was cancelled")
}

func TestNewHashPool_DefaultWorkers(t *testing.T) {
	if got := NewHashPool(0, auth.NewBcryptHasher(0), zerolog.Nop()).Workers(); got != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, got)
	}
}
