package denylist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/emailprobe/internal/denylist"
)

func TestDefault(t *testing.T) {
	l := denylist.Default()
	assert.Contains(t, l.Tokens(), "yahoo")

	tok, ok := l.Match("mta5.am0.YahooDNS.net")
	assert.True(t, ok)
	assert.Equal(t, "yahoo", tok)

	_, ok = l.Match("aspmx.l.google.com")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	l := denylist.New(" Outlook ", "", "mimecast")
	assert.Equal(t, []string{"outlook", "mimecast"}, l.Tokens())

	_, ok := l.Match("eu-smtp-inbound-1.mimecast.com")
	assert.True(t, ok)

	_, ok = denylist.New().Match("anything")
	assert.False(t, ok)
}
