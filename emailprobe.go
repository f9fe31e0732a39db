// Package emailprobe tells whether an email address is plausibly
// deliverable without sending mail. It checks the address syntax,
// resolves the domain's MX records and walks the SMTP dialogue with the
// primary exchanger, through a SOCKS5 proxy, up to RCPT TO.
//
// Basic usage:
//
//	res, err := emailprobe.New().Verify(ctx, "user@example.com", "127.0.0.1", 1080)
//
// Tuned:
//
//	v := emailprobe.New(emailprobe.Options{
//	    Timeout:       5 * time.Second,
//	    VerifyDomain:  true,
//	    VerifyMailbox: true,
//	}).WithTracer(emailprobe.NewLogrusTracer(logrus.StandardLogger()))
package emailprobe

import (
	"github.com/optimode/emailprobe/check"
	"github.com/optimode/emailprobe/types"
)

// VerificationResult is a re-export from the types package so that
// consumers don't need to import the types package directly.
type VerificationResult = types.VerificationResult

// Tristate is a re-export.
type Tristate = types.Tristate

// Tristate values re-exported.
const (
	Unknown = types.Unknown
	True    = types.True
	False   = types.False
)

// ProxyEndpoint is a re-export.
type ProxyEndpoint = check.ProxyEndpoint
