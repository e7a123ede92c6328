// Package security protects stored credentials with one-way digests.
package security

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MinCost is the lowest bcrypt work factor the hasher will use.
const MinCost = 10

// Hasher turns plaintext secrets into storable digests.
type Hasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// BcryptHasher hashes with bcrypt. At most limit hashes run at once.
type BcryptHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewBcryptHasher creates a BcryptHasher. cost is raised to MinCost when lower,
// and limit defaults to the number of CPUs when not positive.
func NewBcryptHasher(cost, limit int) *BcryptHasher {
	if cost < MinCost {
		cost = MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return &BcryptHasher{cost: cost, sem: semaphore.NewWeighted(int64(limit))}
}

// Cost returns the work factor in use.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash computes a salted digest of plaintext. It returns early with the
// context error if ctx is done before the digest is ready.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("failed to acquire hashing slot: %w", err)
	}

	type result struct {
		digest []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		defer h.sem.Release(1)
		digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		done <- result{digest: digest, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("password hashing aborted: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("failed to hash password: %w", res.err)
		}
		return string(res.digest), nil
	}
}

// Verify reports whether plaintext matches digest.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
