package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "correct-horse", hash)

	require.NoError(t, ComparePassword(hash, "correct-horse"))
	require.Error(t, ComparePassword(hash, "wrong"))
}

func TestHashPasswordClampsBadCost(t *testing.T) {
	// Out-of-range costs fall back to the default rather than failing.
	hash, err := HashPassword("correct-horse", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)

	_, err = HashPassword("correct-horse", -1)
	require.NoError(t, err)
}
