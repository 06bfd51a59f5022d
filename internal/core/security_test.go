// AngelaMos | 2026
// security_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateConfirmationCode(t *testing.T) {
	t.Run("respects requested length", func(t *testing.T) {
		code, err := GenerateConfirmationCode(20)
		require.NoError(t, err)
		assert.Len(t, code, 20)
	})

	t.Run("defaults on non-positive length", func(t *testing.T) {
		code, err := GenerateConfirmationCode(0)
		require.NoError(t, err)
		assert.Len(t, code, 20)
	})

	t.Run("codes are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 100 {
			code, err := GenerateConfirmationCode(20)
			require.NoError(t, err)
			assert.False(t, seen[code], "duplicate code generated")
			seen[code] = true
		}
	})
}

func TestTokenHashing(t *testing.T) {
	t.Run("hash is deterministic", func(t *testing.T) {
		assert.Equal(t, HashToken("abc"), HashToken("abc"))
	})

	t.Run("compare accepts matching token", func(t *testing.T) {
		hash := HashToken("SOMECODE")
		assert.True(t, CompareTokenHash("SOMECODE", hash))
	})

	t.Run("compare rejects wrong token", func(t *testing.T) {
		hash := HashToken("SOMECODE")
		assert.False(t, CompareTokenHash("OTHERCODE", hash))
	})
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	other, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
