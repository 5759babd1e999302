package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA‑256 hashing for refresh tokens
	"encoding/hex"  // hex encoding and decoding functions
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2" // JWKS fetching and key rotation
	"github.com/golang-jwt/jwt/v5"     // JWT library for creating and verifying tokens
)

// AccessToken is a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken is a long‑lived token used to obtain new access tokens.
// Only the SHA‑256 hash of Raw is stored in the database.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT whose subject is the user
// id.  Roles are not embedded: they are read from the users table on
// every request, so a promotion to hotel owner takes effect immediately.
func NewAccessToken(secret, userID string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken returns a cryptographically secure random token and its
// expiration time.
func NewRefreshToken(ttl time.Duration) (RefreshToken, error) {
	raw, err := randomHex(48) // 48 bytes -> 96 hex chars
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Raw: raw, Exp: time.Now().UTC().Add(ttl)}, nil
}

// HashRefreshRaw returns the hex SHA‑256 hash of a raw refresh token.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HMACKeyfunc verifies tokens signed with secret using an HMAC method.
func HMACKeyfunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}
}

// JWKSKeyfunc fetches the identity provider's key set from jwksURL and
// keeps it refreshed in the background.  The returned stop function ends
// the refresh goroutine.
func JWKSKeyfunc(jwksURL string, refresh time.Duration) (jwt.Keyfunc, func(), error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   refresh,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Printf("jwks: refresh %s: %v", jwksURL, err)
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load jwks: %w", err)
	}
	return jwks.Keyfunc, jwks.EndBackground, nil
}

// ChainKeyfuncs collects the keys every keyfunc yields into one
// verification set, so the parser checks the signature against each in
// turn.  It lets locally issued HS256 tokens and identity provider RS256
// tokens be accepted side by side, and an old and a new HMAC secret both
// verify during a rotation.
func ChainKeyfuncs(fns ...jwt.Keyfunc) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		var (
			keys []jwt.VerificationKey
			errs []error
		)
		for _, fn := range fns {
			key, err := fn(t)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if set, ok := key.(jwt.VerificationKeySet); ok {
				keys = append(keys, set.Keys...)
				continue
			}
			keys = append(keys, key)
		}
		if len(keys) == 0 {
			return nil, errors.Join(errs...)
		}
		return jwt.VerificationKeySet{Keys: keys}, nil
	}
}
