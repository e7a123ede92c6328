package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"usersvc/internal/repositories"
	"usersvc/internal/validation"
)

// Kind classifies a service failure.
type Kind int

const (
	// KindInternal covers storage outages, timeouts and unexpected faults.
	KindInternal Kind = iota
	// KindValidation means the request payload or identifier was rejected.
	KindValidation
	// KindNotFound means no user has the requested userId.
	KindNotFound
	// KindConflict means a userId or username is already taken.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is returned by every service operation that fails.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, KindInternal when it carries none.
func KindOf(err error) Kind {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return KindInternal
}

// ParseUserID converts a path identifier into a userId. A non-numeric value
// is a validation failure.
func ParseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &Error{Kind: KindValidation, Op: "parse userId", Err: &validation.Error{
			Violations: []validation.Violation{{Field: "userId", Constraint: "type", Message: "userId must be an integer"}},
		}}
	}
	return id, nil
}

func classify(op string, err error) *Error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return &Error{Kind: KindValidation, Op: op, Err: err}
	case errors.Is(err, repositories.ErrNotFound):
		return &Error{Kind: KindNotFound, Op: op, Err: err}
	case errors.Is(err, repositories.ErrDuplicateKey):
		return &Error{Kind: KindConflict, Op: op, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindInternal, Op: op, Err: fmt.Errorf("operation timed out: %w", err)}
	default:
		return &Error{Kind: KindInternal, Op: op, Err: err}
	}
}
