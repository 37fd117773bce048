// Package jwt mints and validates the signed session tokens used as
// bearer credentials. Tokens are stateless: validity is signature plus
// expiry, nothing is stored server-side.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails signature
	// verification or its claims are malformed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when the token's signed expiry has
	// passed.
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the signed claim set carried by a session token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token for the given user id, valid for
// the given duration from now.
func GenerateToken(userID string, expiration time.Duration, secret string) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// GenerateRefreshToken signs a longer-lived token with the same claim
// shape. Kept for API clients that manage their own session renewal.
func GenerateRefreshToken(userID string, expiration time.Duration, secret string) (string, error) {
	return GenerateToken(userID, expiration, secret)
}

// ValidateToken verifies the signature and expiry of a token and returns
// its claims. Expired tokens yield ErrExpiredToken, every other failure
// yields ErrInvalidToken.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
