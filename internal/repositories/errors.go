package repositories

import "errors"

var (
	// ErrNotFound is returned when no user has the requested userId.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateKey is returned when a write would repeat a userId or username.
	ErrDuplicateKey = errors.New("user with this userId or username already exists")
	// ErrWriteConflict is returned when concurrent writers kept invalidating a
	// read-modify-write cycle.
	ErrWriteConflict = errors.New("user was modified concurrently")
)

// maxWriteAttempts bounds optimistic read-modify-write retries.
const maxWriteAttempts = 5
