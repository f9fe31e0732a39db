// Package denylist matches MX host names against providers that are known
// to make mailbox probing meaningless.
package denylist

import (
	_ "embed"
	"strings"
)

//go:embed providers.txt
var rawList string

var defaultTokens = parse(rawList)

// List is an immutable set of host name tokens.
type List struct {
	tokens []string
}

// Default returns the embedded provider list.
func Default() List {
	return List{tokens: defaultTokens}
}

// New builds a list from the given tokens. Empty tokens are ignored.
func New(tokens ...string) List {
	l := List{}
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			l.tokens = append(l.tokens, t)
		}
	}
	return l
}

// Match returns the first token contained in host, if any.
func (l List) Match(host string) (string, bool) {
	host = strings.ToLower(host)
	for _, t := range l.tokens {
		if strings.Contains(host, t) {
			return t, true
		}
	}
	return "", false
}

// Tokens returns a copy of the tokens.
func (l List) Tokens() []string {
	return append([]string(nil), l.tokens...)
}

func parse(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, strings.ToLower(line))
		}
	}
	return out
}
