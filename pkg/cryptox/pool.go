package cryptox

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many password KDF operations run at once. Argon2id is
// deliberately expensive, so unbounded concurrent logins would starve every
// other request of CPU and memory.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool returns a Pool running at most size hash operations concurrently.
// A non-positive size defaults to the number of CPUs.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Hash runs HashPassword once a worker slot is free.
func (p *Pool) Hash(ctx context.Context, password string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)

	return HashPassword(password)
}

// Verify runs VerifyPassword once a worker slot is free.
func (p *Pool) Verify(ctx context.Context, password, stored string) (bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer p.sem.Release(1)

	return VerifyPassword(password, stored), nil
}
