package whitelist

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIsWhitelisted(t *testing.T) {
	c := NewChecker([]string{" Example.com ", "", "trusted.org."}, zap.NewNop())
	require.Equal(t, []string{"example.com", "trusted.org"}, c.Domains())

	cases := []struct {
		from string
		want bool
	}{
		{"alice@example.com", true},
		{"ALICE@EXAMPLE.COM", true},
		{"Alice <alice@example.com>", true},
		{"bob@mail.example.com", true},
		{"bob@notexample.com", false},
		{"carol@trusted.org", true},
		{"mallory@example.com.evil.net", false},
		{"no-at-sign", false},
		{"trailing@", false},
		{"", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, c.IsWhitelisted(tc.from), tc.from)
	}
}

func TestEmptyWhitelist(t *testing.T) {
	c := NewChecker(nil, nil)
	require.False(t, c.IsWhitelisted("alice@example.com"))
}

func TestDomain(t *testing.T) {
	require.Equal(t, "example.com", Domain("\"Doe, Jane\" <jane@Example.com>"))
	require.Equal(t, "example.com", Domain("jane@example.com"))
	require.Equal(t, "", Domain("jane"))
}
