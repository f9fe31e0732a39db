package emailprobe

import "time"

// Options configures a Validator.
type Options struct {
	// Timeout bounds the proxy connect and, separately, the whole SMTP
	// session. Zero means the default. Default: 10s
	Timeout time.Duration
	// VerifyDomain sets ValidDomain from MX presence. Default: true
	VerifyDomain bool
	// VerifyMailbox probes the primary MX host. Default: true
	VerifyMailbox bool
	// StrictSyntax applies RFC 5321 local part and label rules on top of
	// the basic local@domain split. Default: false
	StrictSyntax bool
}

// DefaultOptions returns the options New uses when called without arguments.
func DefaultOptions() Options {
	return Options{
		Timeout:       10 * time.Second,
		VerifyDomain:  true,
		VerifyMailbox: true,
	}
}

// ProbeOptions tunes the SMTP dialogue.
type ProbeOptions struct {
	// Port is the SMTP port. Default: "25"
	Port string
	// HeloName is sent with HELO. Default: the address domain.
	HeloName string
	// MailFrom is sent with MAIL FROM. Default: the address itself.
	MailFrom string
	// DenyList replaces the built-in MX provider tokens that are never
	// probed. nil keeps the built-in list, an empty slice disables it.
	DenyList []string
}

// ConcurrencyOptions configures concurrent processing for VerifyMany.
type ConcurrencyOptions struct {
	// Workers is the number of concurrent goroutines. Default: 5
	Workers int
}
