// Package auth issues and verifies the request-forgery nonce sent with AJAX
// calls and the bearer tokens that grant admin capabilities.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NonceAction is the only action nonces are minted for.
const NonceAction = "sip_rswc_reviews_nonce"

// DefaultNonceTTL matches the lifetime of a WordPress nonce.
const DefaultNonceTTL = 24 * time.Hour

const (
	issuer        = "sip-reviews"
	nonceAudience = "ajax"
)

// ErrInvalidNonce is returned for missing, expired, forged or foreign nonces.
var ErrInvalidNonce = errors.New("invalid nonce")

type nonceClaims struct {
	Action string `json:"action"`
	jwt.RegisteredClaims
}

// NonceManager mints and checks nonces.
type NonceManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewNonceManager creates a manager. A non-positive ttl means DefaultNonceTTL.
func NewNonceManager(secret string, ttl time.Duration) *NonceManager {
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	return &NonceManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue returns a new nonce for NonceAction.
func (m *NonceManager) Issue() (string, error) {
	now := m.now().UTC()
	claims := &nonceClaims{
		Action: NonceAction,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{nonceAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign nonce: %w", err)
	}
	return signed, nil
}

// Verify checks that nonce was issued here for NonceAction and has not expired.
func (m *NonceManager) Verify(nonce string) error {
	if nonce == "" {
		return ErrInvalidNonce
	}

	claims := &nonceClaims{}
	_, err := jwt.ParseWithClaims(nonce, claims, m.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(nonceAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNonce, err)
	}
	if claims.Action != NonceAction {
		return fmt.Errorf("%w: action %q", ErrInvalidNonce, claims.Action)
	}
	return nil
}

func (m *NonceManager) key(*jwt.Token) (any, error) {
	return m.secret, nil
}
