package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/api/metrics"
)

const defaultWorkers = 4

// ErrPoolClosed is returned for jobs submitted after the pool stopped.
var ErrPoolClosed = errors.New("hash pool closed")

// CredentialHasher is the synchronous hasher the workers run.
type CredentialHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type job struct {
	op   string
	run  func()
	done chan struct{}
}

// HashPool runs password hashing on a fixed set of workers so bcrypt work
// never piles up on request goroutines. It implements ports.PasswordHasher.
type HashPool struct {
	hasher  CredentialHasher
	workers int
	jobs    chan job
	quit    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	log     zerolog.Logger
}

// NewHashPool creates a HashPool with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewHashPool(numWorkers int, hasher CredentialHasher, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &HashPool{
		hasher:  hasher,
		workers: numWorkers,
		jobs:    make(chan job),
		quit:    make(chan struct{}),
		log:     log,
	}
}

// Workers returns the number of worker goroutines.
func (p *HashPool) Workers() int { return p.workers }

// Start launches all worker goroutines. The pool closes when ctx is cancelled.
func (p *HashPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
	go func() {
		select {
		case <-ctx.Done():
			p.Close()
		case <-p.quit:
		}
	}()
}

// Close stops the workers after their current job and waits for them.
// Safe to call more than once.
func (p *HashPool) Close() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}

// Hash returns the hash of plaintext computed on a pool worker.
func (p *HashPool) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		hash string
		err  error
	)
	if serr := p.submit(ctx, "hash", func() { hash, err = p.hasher.Hash(plaintext) }); serr != nil {
		return "", serr
	}
	return hash, err
}

// Verify reports whether plaintext matches hash, computed on a pool worker.
func (p *HashPool) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	var ok bool
	if err := p.submit(ctx, "verify", func() { ok = p.hasher.Verify(plaintext, hash) }); err != nil {
		return false, err
	}
	return ok, nil
}

// submit hands fn to a free worker and waits for it. The jobs channel is
// unbuffered, so an accepted job always runs to completion.
func (p *HashPool) submit(ctx context.Context, op string, fn func()) error {
	select {
	case <-p.quit:
		return ErrPoolClosed
	default:
	}

	j := job{op: op, run: fn, done: make(chan struct{})}

	metrics.HashQueueDepth.Inc()
	select {
	case p.jobs <- j:
		metrics.HashQueueDepth.Dec()
	case <-ctx.Done():
		metrics.HashQueueDepth.Dec()
		return ctx.Err()
	case <-p.quit:
		metrics.HashQueueDepth.Dec()
		return ErrPoolClosed
	}

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *HashPool) runWorker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case j := <-p.jobs:
			start := time.Now()
			j.run()
			close(j.done)
			elapsed := time.Since(start)
			metrics.HashDuration.WithLabelValues(j.op).Observe(elapsed.Seconds())
			p.log.Trace().Str("op", j.op).Int("worker_id", id).Dur("elapsed", elapsed).Msg("password job done")
		}
	}
}
