package cli

import (
	"errors"
	"fmt"

	"github.com/paperjury/paperjury/internal/application"
	"github.com/paperjury/paperjury/internal/domain/paper"
	"github.com/paperjury/paperjury/internal/infrastructure/config"
)

// CLIError wraps pipeline errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known pipeline errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, paper.ErrNotFound):
		return NewCLIError("paper file not found", "Check the path; the paper must exist and be readable", err)
	case errors.Is(err, paper.ErrUnsupportedFormat):
		return NewCLIError("unsupported paper format", "Only .tex and .pdf papers are supported", err)
	case errors.Is(err, paper.ErrPDFUnavailable):
		return NewCLIError("PDF extraction is not available", "Convert the paper to LaTeX, or use a .tex source file", err)
	case errors.Is(err, paper.ErrExtractionFailed):
		return NewCLIError("could not extract text from the paper", "The file may be corrupted, empty, or contain no extractable text", err)
	case errors.Is(err, config.ErrInvalid):
		return NewCLIError("invalid configuration", "Fix the reported field in your config file and retry", err)
	case errors.Is(err, application.ErrUnknownJudge):
		return NewCLIError("unknown judge", "Use --judge with a name from your config's judges list", err)
	}

	return err
}
