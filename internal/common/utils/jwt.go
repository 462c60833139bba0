// internal/common/utils/jwt.go
// JWT helpers shared by the session holder (reads) and the sandbox backend (issue/verify)

package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// JWTClaims is the subset of the backend's token payload the client cares about.
// Sacavia user ids are opaque strings.
type JWTClaims struct {
	UserID     string `json:"id"`
	Email      string `json:"email"`
	Collection string `json:"collection"`
	ExpiresAt  int64  `json:"exp"`
	IssuedAt   int64  `json:"iat"`
}

// Expired reports whether the token carried an expiry that is behind now.
// Tokens without exp never expire client-side.
func (c *JWTClaims) Expired(now time.Time) bool {
	return c.ExpiresAt > 0 && now.Unix() >= c.ExpiresAt
}

// GenerateJWT creates a new HS256 token
func GenerateJWT(claims *JWTClaims, secret string) (string, error) {
	mc := jwt.MapClaims{
		"id":         claims.UserID,
		"email":      claims.Email,
		"collection": claims.Collection,
		"iat":        claims.IssuedAt,
	}
	if claims.ExpiresAt > 0 {
		mc["exp"] = claims.ExpiresAt
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a token signature and expiry and returns its claims
func ValidateJWT(tokenString string, secret string) (*JWTClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claimsFromMap(claims)
}

// ParseUnverified reads claims without checking the signature. The client never holds
// the signing key; it only needs the user id and expiry to fail fast.
func ParseUnverified(tokenString string) (*JWTClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claimsFromMap(claims)
}

func claimsFromMap(claims jwt.MapClaims) (*JWTClaims, error) {
	userID := getStringClaim(claims, "id")
	if userID == "" {
		userID = getStringClaim(claims, "user_id")
	}
	if userID == "" {
		userID = getStringClaim(claims, "sub")
	}
	if userID == "" {
		return nil, errors.New("token has no user id")
	}

	return &JWTClaims{
		UserID:     userID,
		Email:      getStringClaim(claims, "email"),
		Collection: getStringClaim(claims, "collection"),
		ExpiresAt:  getInt64Claim(claims, "exp"),
		IssuedAt:   getInt64Claim(claims, "iat"),
	}, nil
}

func getStringClaim(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return ""
}

func getInt64Claim(claims jwt.MapClaims, key string) int64 {
	if val, ok := claims[key].(float64); ok {
		return int64(val)
	}
	return 0
}
