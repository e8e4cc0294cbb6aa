// Package auth provides the stateless building blocks of authentication:
// the bearer-token codec, the password hasher, and the ownership policy.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aicodehub/aicodehub/internal/common"
)

// TokenKind discriminates user tokens from machine (client-credential)
// tokens. For kind=client the subject is a client identifier, not a username.
type TokenKind string

const (
	TokenKindUser   TokenKind = "user"
	TokenKindClient TokenKind = "client"
)

// Claims carries the registered claim set plus the token kind.
type Claims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"kind"`
}

// GenerateToken signs a token for subject with the given kind and lifetime.
// A non-positive ttl produces a token that is already expired; this matters
// for callers that deliberately mint dead tokens.
func GenerateToken(subject string, kind TokenKind, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies tokenString and returns its subject and kind.
// Failures map onto distinct sentinel kinds:
//   - common.ErrMalformedCredential: not a decodable JWT
//   - common.ErrExpiredCredential: expiry has passed (no grace window)
//   - common.ErrInvalidCredential: signature mismatch or any other defect
//
// Only HS256 is accepted; a token signed with any other method is invalid.
func ParseToken(tokenString string, secretKey []byte) (string, TokenKind, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", "", common.ErrMalformedCredential
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", "", common.ErrExpiredCredential
		default:
			return "", "", common.ErrInvalidCredential
		}
	}

	if !token.Valid || claims.Subject == "" {
		return "", "", common.ErrInvalidCredential
	}

	kind := claims.Kind
	if kind == "" {
		kind = TokenKindUser
	}

	return claims.Subject, kind, nil
}
