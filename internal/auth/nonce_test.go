package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-nonces"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNonceManager_IssueAndVerify(t *testing.T) {
	m := NewNonceManager(testSecret, time.Hour)

	nonce, err := m.Issue()
	require.NoError(t, err)
	assert.NotEmpty(t, nonce)
	assert.NoError(t, m.Verify(nonce))
}

func TestNonceManager_DefaultTTL(t *testing.T) {
	m := NewNonceManager(testSecret, 0)
	assert.Equal(t, DefaultNonceTTL, m.ttl)
}

func TestNonceManager_Expired(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewNonceManager(testSecret, time.Hour)
	m.now = fixedClock(start)

	nonce, err := m.Issue()
	require.NoError(t, err)

	m.now = fixedClock(start.Add(2 * time.Hour))
	err = m.Verify(nonce)
	assert.ErrorIs(t, err, ErrInvalidNonce)
}

func TestNonceManager_Empty(t *testing.T) {
	m := NewNonceManager(testSecret, time.Hour)
	assert.ErrorIs(t, m.Verify(""), ErrInvalidNonce)
}

func TestNonceManager_WrongSecret(t *testing.T) {
	nonce, err := NewNonceManager("other-secret", time.Hour).Issue()
	require.NoError(t, err)

	err = NewNonceManager(testSecret, time.Hour).Verify(nonce)
	assert.ErrorIs(t, err, ErrInvalidNonce)
}

func TestNonceManager_Garbage(t *testing.T) {
	m := NewNonceManager(testSecret, time.Hour)
	assert.ErrorIs(t, m.Verify("not-a-token"), ErrInvalidNonce)
}

func TestNonceManager_WrongAction(t *testing.T) {
	m := NewNonceManager(testSecret, time.Hour)
	now := time.Now()
	claims := &nonceClaims{
		Action: "some_other_action",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{nonceAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.ErrorIs(t, m.Verify(forged), ErrInvalidNonce)
}

func TestNonceManager_RejectsAccessToken(t *testing.T) {
	token, err := NewTokenManager(testSecret).Issue("1", []string{CapabilityManageWooCommerce}, time.Hour)
	require.NoError(t, err)

	err = NewNonceManager(testSecret, time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidNonce)
}
