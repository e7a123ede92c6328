package security_test

import (
	"context"
	"testing"

	"usersvc/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashIsRandomized(t *testing.T) {
	h := security.NewBcryptHasher(security.MinCost, 2)
	ctx := context.Background()

	first, err := h.Hash(ctx, "password123")
	require.NoError(t, err)
	second, err := h.Hash(ctx, "password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", first)
	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("password123", first))
	assert.True(t, h.Verify("password123", second))
	assert.False(t, h.Verify("wrongpassword", first))
}

func TestBcryptHasher_CostFloor(t *testing.T) {
	h := security.NewBcryptHasher(bcrypt.MinCost, 1)
	assert.Equal(t, security.MinCost, h.Cost())

	digest, err := h.Hash(context.Background(), "x")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, security.MinCost, cost)
}

func TestBcryptHasher_CancelledContext(t *testing.T) {
	h := security.NewBcryptHasher(security.MinCost, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "password123")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBcryptHasher_VerifyRejectsGarbage(t *testing.T) {
	h := security.NewBcryptHasher(security.MinCost, 1)
	assert.False(t, h.Verify("password123", "password123"))
	assert.False(t, h.Verify("password123", ""))
}
