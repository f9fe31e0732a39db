// Package types contains the shared types for emailprobe.
// This package does not import anything from other emailprobe packages
// to avoid circular imports.
package types

import (
	"encoding/json"
	"fmt"
)

// Tristate is a verdict that may be undetermined.
// The zero value is Unknown, which always means "could not determine"
// and never "determined to be false".
type Tristate int8

const (
	Unknown Tristate = iota
	True
	False
)

// FromBool converts a definite boolean into a Tristate.
func FromBool(b bool) Tristate {
	if b {
		return True
	}
	return False
}

// Known reports whether the verdict was determined.
func (t Tristate) Known() bool {
	return t == True || t == False
}

// Bool returns the verdict and whether it is known.
func (t Tristate) Bool() (value, ok bool) {
	return t == True, t.Known()
}

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes Unknown as null.
func (t Tristate) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false and null.
func (t *Tristate) UnmarshalJSON(b []byte) error {
	var v *bool
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("types: invalid tristate %s: %w", b, err)
	}
	if v == nil {
		*t = Unknown
		return nil
	}
	*t = FromBool(*v)
	return nil
}

// VerificationResult is the outcome of a single address verification.
// ValidDomain and ValidMailbox stay Unknown when the respective check
// was not requested or could not be performed.
type VerificationResult struct {
	Email        string   `json:"email"`
	WellFormed   bool     `json:"wellFormed"`
	ValidDomain  Tristate `json:"validDomain"`
	ValidMailbox Tristate `json:"validMailbox"`
	MXHost       string   `json:"mxHost,omitempty"`
	SMTPCode     int      `json:"smtpCode,omitempty"`
	Details      string   `json:"details,omitempty"`
}
