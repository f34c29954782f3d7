package tools

import (
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// toolError logs a failed call and returns err so the SDK reports it as a
// tool error with the domain code prefixed.
func toolError(log *logging.Logger, tool string, err error) error {
	log.Warn("tool call failed", "tool", tool, "code", domain.ErrorCode(err), "error", err)
	return &codedError{code: domain.ErrorCode(err), err: err}
}

type codedError struct {
	code string
	err  error
}

func (e *codedError) Error() string { return e.code + ": " + e.err.Error() }

func (e *codedError) Unwrap() error { return e.err }
