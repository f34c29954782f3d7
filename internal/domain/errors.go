package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Error kinds surfaced by the lifecycle. Wrap them with fmt.Errorf and %w;
// test with errors.Is.
var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidInput      = errors.New("invalid input")
	ErrLimitExceeded     = errors.New("limit exceeded")
	ErrDependencyFailure = errors.New("dependency failure")
	ErrDependencyTimeout = errors.New("dependency timeout")
)

// ErrorCode returns a stable machine-readable code for err
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, ErrDependencyTimeout):
		return "dependency_timeout"
	case errors.Is(err, ErrDependencyFailure):
		return "dependency_failure"
	default:
		return "internal"
	}
}

// CallDependency runs fn under timeout and classifies its failure as
// ErrDependencyTimeout or ErrDependencyFailure.
func CallDependency(ctx context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := fn(ctx)
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrDependencyTimeout, name, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrDependencyFailure, name, err)
}
