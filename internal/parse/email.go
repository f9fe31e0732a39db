// Package parse splits email addresses into their local and domain parts.
package parse

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// ErrFormat is returned for addresses that cannot be split into a
// non-empty local part and domain.
var ErrFormat = errors.New("parse: malformed email address")

// Address is the parsed form of an email address.
type Address struct {
	Raw           string // the original, trimmed input
	Local         string // the part before @
	Domain        string // the part after @, ASCII/Punycode form (for DNS/SMTP)
	DomainUnicode string // the part after @, Unicode form (for display)
}

// String returns local@domain using the ASCII domain.
func (a Address) String() string {
	return a.Local + "@" + a.Domain
}

// Parse splits raw into an Address. The input must contain exactly one
// '@' with something on both sides of it, and no control characters.
// Spaces are only allowed inside a quoted local part. Internationalized
// domains are converted to Punycode via IDNA2008.
func Parse(raw string) (Address, error) {
	raw = strings.TrimSpace(raw)

	local, domain, found := strings.Cut(raw, "@")
	if !found {
		return Address{}, fmt.Errorf("%w: %q has no '@'", ErrFormat, raw)
	}
	if strings.Contains(domain, "@") {
		return Address{}, fmt.Errorf("%w: %q has more than one '@'", ErrFormat, raw)
	}
	if local == "" || domain == "" {
		return Address{}, fmt.Errorf("%w: %q has an empty local part or domain", ErrFormat, raw)
	}
	if r, ok := invalidRune(local, isQuoted(local)); ok {
		return Address{}, fmt.Errorf("%w: local part of %q contains %U", ErrFormat, raw, r)
	}
	if r, ok := invalidRune(domain, false); ok {
		return Address{}, fmt.Errorf("%w: domain of %q contains %U", ErrFormat, raw, r)
	}

	ascii, unicode, err := convertDomain(strings.ToLower(domain))
	if err != nil {
		return Address{}, fmt.Errorf("%w: domain %q: %v", ErrFormat, domain, err)
	}

	return Address{
		Raw:           raw,
		Local:         local,
		Domain:        ascii,
		DomainUnicode: unicode,
	}, nil
}

// invalidRune returns the first control character in s, or the first
// space unless spaces are allowed.
func invalidRune(s string, allowSpace bool) (rune, bool) {
	for _, r := range s {
		if r < 0x20 || r == 0x7f || (r == ' ' && !allowSpace) {
			return r, true
		}
	}
	return 0, false
}

func isQuoted(local string) bool {
	return len(local) >= 2 && strings.HasPrefix(local, `"`) && strings.HasSuffix(local, `"`)
}

// convertDomain returns the ASCII/Punycode and Unicode forms of domain.
func convertDomain(domain string) (ascii, unicode string, err error) {
	hasNonASCII := false
	for _, r := range domain {
		if r > 127 {
			hasNonASCII = true
			break
		}
	}

	if hasNonASCII {
		a, err := idna.Lookup.ToASCII(domain)
		if err != nil {
			return "", "", err
		}
		return a, domain, nil
	}

	// Existing Punycode like xn--mnchen-3ya.de gets a readable form.
	u, err := idna.Display.ToUnicode(domain)
	if err != nil {
		u = domain
	}
	return domain, u, nil
}
