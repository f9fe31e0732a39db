package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optimode/emailprobe/internal/parse"
)

func TestParse_ASCII(t *testing.T) {
	a, err := parse.Parse("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user", a.Local)
	assert.Equal(t, "example.com", a.Domain)
	assert.Equal(t, "example.com", a.DomainUnicode)
	assert.Equal(t, "user@example.com", a.String())
}

func TestParse_Whitespace(t *testing.T) {
	a, err := parse.Parse("  user@example.com  ")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", a.Raw)
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"noatsign",
		"@nodomain",
		"nolocal@",
		"two@at@signs.com",
		"user\r\nVRFY root@example.com",
		"user@example.com\r\nRSET",
		"us\x00er@example.com",
		"us\x7fer@example.com",
		"user@exa\tmple.com",
		"us er@example.com",
		"user@exa mple.com",
	}
	for _, raw := range tests {
		_, err := parse.Parse(raw)
		assert.ErrorIs(t, err, parse.ErrFormat, "expected format error for %q", raw)
	}
}

func TestParse_QuotedLocalWithSpace(t *testing.T) {
	a, err := parse.Parse(`"john doe"@example.com`)
	require.NoError(t, err)
	assert.Equal(t, `"john doe"`, a.Local)

	_, err = parse.Parse("\"john\r\ndoe\"@example.com")
	assert.ErrorIs(t, err, parse.ErrFormat)
}

func TestParse_IDN(t *testing.T) {
	a, err := parse.Parse("user@münchen.de")
	require.NoError(t, err)
	assert.Equal(t, "xn--mnchen-3ya.de", a.Domain)
	assert.Equal(t, "münchen.de", a.DomainUnicode)

	a, err = parse.Parse("user@xn--mnchen-3ya.de")
	require.NoError(t, err)
	assert.Equal(t, "xn--mnchen-3ya.de", a.Domain)
	assert.Equal(t, "münchen.de", a.DomainUnicode)
}

func TestParse_UnicodeLocal(t *testing.T) {
	a, err := parse.Parse("用户@example.com")
	require.NoError(t, err)
	assert.Equal(t, "用户", a.Local)
}

func TestParse_DomainCaseNormalization(t *testing.T) {
	a, err := parse.Parse("User@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, "User", a.Local)
	assert.Equal(t, "example.com", a.Domain)
}
