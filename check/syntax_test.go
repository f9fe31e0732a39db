package check_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/emailprobe/check"
	"github.com/optimode/emailprobe/internal/parse"
)

func TestValidateSyntax(t *testing.T) {
	tests := []struct {
		name   string
		email  string
		wantOK bool
	}{
		{"valid simple", "user@example.com", true},
		{"valid with plus", "user+tag@example.com", true},
		{"valid with dots", "first.last@example.com", true},
		{"valid quoted local", `"user name"@example.com`, true},
		{"valid subdomain", "user@mail.example.co.uk", true},
		{"double dot local", "user..name@example.com", false},
		{"leading dot local", ".user@example.com", false},
		{"trailing dot local", "user.@example.com", false},
		{"invalid local char", "us,er@example.com", false},
		{"consecutive dots domain", "user@exam..ple.com", false},
		{"single label domain", "user@localhost", false},
		{"too long total", strings.Repeat("a", 64) + "@" + strings.Repeat("b", 190) + ".com", false},
		{"too long local", strings.Repeat("a", 65) + "@example.com", false},
		{"numeric TLD", "user@example.123", false},
		{"label starts with hyphen", "user@-example.com", false},
		{"label ends with hyphen", "user@example-.com", false},
		{"valid IDN german", "user@münchen.de", true},
		{"valid IDN japanese", "user@例え.jp", true},
		{"valid Punycode", "user@xn--mnchen-3ya.de", true},
		{"valid EAI chinese local", "用户@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parse.Parse(tt.email)
			if err != nil {
				assert.False(t, tt.wantOK, "parse failed: %v", err)
				return
			}
			err = check.ValidateSyntax(a)
			if tt.wantOK {
				assert.NoError(t, err)
				return
			}
			assert.True(t, check.IsSyntaxError(err), "expected syntax error, got %v", err)
			assert.ErrorIs(t, err, parse.ErrFormat)
		})
	}
}
