package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "dana@example.com", NormalizeEmail("  Dana@Example.COM "))
	assert.Equal(t, "dana@example.com", NormalizeEmail("Dana@Example.com"))
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, CheckPassword(hash, "hunter22"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateAccessToken("d1", "dana@example.com", "designer", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "d1", claims.UserID)
	assert.Equal(t, "designer", claims.Role)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestMergeURLArrays(t *testing.T) {
	merged := MergeURLArrays(
		[]string{"a", "b", "c"},
		[]string{"b"},
		[]string{"c", "d"},
	)
	assert.Equal(t, []string{"a", "c", "d"}, merged)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 5, ParseIntDefault("", 5))
	assert.Equal(t, 7, ParseIntDefault("7", 5))
	assert.Equal(t, 5, ParseIntDefault("junk", 5))
}
