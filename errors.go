package emailprobe

import (
	"errors"

	"github.com/optimode/emailprobe/internal/parse"
)

var (
	// ErrInvalidTimeout is returned by Verify when the Validator was
	// built with a negative timeout.
	ErrInvalidTimeout = errors.New("emailprobe: timeout must not be negative")

	// ErrFormat marks addresses that are not well-formed. It appears in
	// VerificationResult.Details, never as a returned error.
	ErrFormat = parse.ErrFormat
)
