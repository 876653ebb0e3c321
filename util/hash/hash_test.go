package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEqual(t, "password123", h)
	require.True(t, Check(h, "password123"))
	require.False(t, Check(h, "password124"))
	require.False(t, Check("not-a-hash", "password123"))
}
