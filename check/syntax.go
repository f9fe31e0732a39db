package check

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/optimode/emailprobe/internal/parse"
)

// ErrSyntax is returned by ValidateSyntax. It wraps parse.ErrFormat so
// callers can treat both the same way.
var ErrSyntax = fmt.Errorf("%w: syntax", parse.ErrFormat)

// ValidateSyntax applies RFC 5321 length limits and the usual local part
// and domain label rules to an already split address. Unicode local parts
// (RFC 6531) and IDN domains are accepted.
func ValidateSyntax(a parse.Address) error {
	if len(a.Raw) > 254 {
		return syntaxError("address exceeds 254 characters")
	}
	if len(a.Local) > 64 {
		return syntaxError("local part exceeds 64 characters")
	}
	if msg := validateLocal(a.Local); msg != "" {
		return syntaxError(msg)
	}
	if msg := validateDomain(a.DomainUnicode); msg != "" {
		return syntaxError(msg)
	}
	return nil
}

func syntaxError(msg string) error {
	return fmt.Errorf("%w: %s", ErrSyntax, msg)
}

// IsSyntaxError reports whether err came from ValidateSyntax.
func IsSyntaxError(err error) bool {
	return errors.Is(err, ErrSyntax)
}

// validateLocal returns error text, or "" if ok.
func validateLocal(local string) string {
	if local == "" {
		return "local part is empty"
	}

	// Quoted local parts allow any printable character.
	if len(local) >= 2 && strings.HasPrefix(local, `"`) && strings.HasSuffix(local, `"`) {
		return ""
	}

	asciiSpecial := "!#$%&'*+/=?^_`{|}~-."
	for _, ch := range local {
		if ch > 127 {
			if unicode.IsControl(ch) {
				return "local part contains control character"
			}
			continue
		}
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			continue
		}
		if !strings.ContainsRune(asciiSpecial, ch) {
			return "local part contains invalid character: " + string(ch)
		}
	}

	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return "local part cannot start or end with a dot"
	}
	if strings.Contains(local, "..") {
		return "local part cannot contain consecutive dots"
	}
	return ""
}

// validateDomain validates the Unicode form of the domain.
// Returns error text, or "" if ok.
func validateDomain(domain string) string {
	if domain == "" {
		return "domain is empty"
	}

	// IP literal like [127.0.0.1], accepted as is
	if strings.HasPrefix(domain, "[") && strings.HasSuffix(domain, "]") {
		return ""
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return "domain must have at least two labels"
	}
	for _, label := range labels {
		if label == "" {
			return "domain contains empty label"
		}
		if len(label) > 63 {
			return "domain label exceeds 63 characters"
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "domain label cannot start or end with a hyphen"
		}
		for _, ch := range label {
			if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '-' {
				return "domain label contains invalid character: " + string(ch)
			}
		}
	}

	tld := labels[len(labels)-1]
	if strings.IndexFunc(tld, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return "TLD cannot be all digits"
	}
	return ""
}
