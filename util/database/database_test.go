package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContainsPattern(t *testing.T) {
	cases := map[string]string{
		"hirata":   `%hirata%`,
		"100%":     `%100\%%`,
		"a_b":      `%a\_b%`,
		`c:\books`: `%c:\\books%`,
		"%_":       `%\%\_%`,
		"":         `%%`,
	}
	for in, want := range cases {
		require.Equal(t, want, ContainsPattern(in), in)
	}
}
