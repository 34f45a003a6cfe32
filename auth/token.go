package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints and verifies the stateless session tokens. Tokens are
// HMAC-SHA256 signed JWTs carrying the user id as subject and expiring after
// the configured TTL (30 days by default). Nothing is persisted server-side
// and tokens are never revoked before expiry.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer with the shared signing secret.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Issue mints a signed token bound to the given user id.
func (t *TokenIssuer) Issue(userID int) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, issuer, and expiry of a raw token string and
// returns the user id it was issued for. Every failure mode collapses to
// ErrInvalidToken.
func (t *TokenIssuer) Parse(tokenString string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.Atoi(subject)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
