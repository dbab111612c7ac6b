package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndRedeem(t *testing.T) {
	store := NewOTPStore()

	sessionID, code := store.Issue("user@example.com")
	require.NotEmpty(t, sessionID)
	require.Len(t, code, 6)

	email, err := store.Redeem(sessionID, code)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestRedeemIsSingleUse(t *testing.T) {
	store := NewOTPStore()
	sessionID, code := store.Issue("user@example.com")

	_, err := store.Redeem(sessionID, code)
	require.NoError(t, err)

	_, err = store.Redeem(sessionID, code)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedeemUnknownSession(t *testing.T) {
	store := NewOTPStore()

	_, err := store.Redeem("no-such-session", "123456")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedeemExpiredDeletesSession(t *testing.T) {
	now := time.Now()
	store := NewOTPStoreWithClock(func() time.Time { return now })

	sessionID, code := store.Issue("user@example.com")

	now = now.Add(6 * time.Minute)
	_, err := store.Redeem(sessionID, code)
	assert.ErrorIs(t, err, ErrCodeExpired)
	assert.Equal(t, 0, store.Len())

	// a late retry must not see the expired session again
	_, err = store.Redeem(sessionID, code)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedeemMismatchKeepsSession(t *testing.T) {
	store := NewOTPStore()
	sessionID, code := store.Issue("user@example.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	_, err := store.Redeem(sessionID, wrong)
	assert.ErrorIs(t, err, ErrCodeMismatch)
	assert.Equal(t, 1, store.Len())

	email, err := store.Redeem(sessionID, code)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestSweepExpired(t *testing.T) {
	now := time.Now()
	store := NewOTPStoreWithClock(func() time.Time { return now })

	store.Issue("a@example.com")
	store.Issue("b@example.com")

	now = now.Add(4 * time.Minute)
	liveSession, liveCode := store.Issue("c@example.com")

	now = now.Add(2 * time.Minute)
	store.SweepExpired()
	assert.Equal(t, 1, store.Len())

	email, err := store.Redeem(liveSession, liveCode)
	require.NoError(t, err)
	assert.Equal(t, "c@example.com", email)
}

func TestCodesAreSixDigits(t *testing.T) {
	store := NewOTPStore()
	for i := 0; i < 50; i++ {
		_, code := store.Issue("user@example.com")
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}
