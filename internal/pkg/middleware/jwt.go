package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/flixhive/flixhive/internal/pkg/cache"
	"github.com/flixhive/flixhive/internal/pkg/env"
	"github.com/flixhive/flixhive/internal/pkg/security"
)

const revokedTokenKeyPrefix = "auth:revoked:"

// JWTSecret returns the HMAC secret used for access tokens.
func JWTSecret() string {
	return env.GetEnv("JWT_SECRET", "")
}

// AccessTokenTTL returns the configured access token lifetime.
func AccessTokenTTL() time.Duration {
	hours := 24
	if v, err := time.ParseDuration(env.GetEnv("JWT_TTL", "")); err == nil && v > 0 {
		return v
	}
	return time.Duration(hours) * time.Hour
}

// ExtractBearerToken pulls the access token from the Authorization header.
func ExtractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// RevokeToken blacklists a token ID in Redis until the token would have
// expired anyway. Logout uses this; the user-context middleware checks it.
func RevokeToken(jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return cache.Set(revokedTokenKeyPrefix+jti, "1", ttl)
}

// IsTokenRevoked reports whether a token ID has been blacklisted.
func IsTokenRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	val, err := cache.Get(revokedTokenKeyPrefix + jti)
	return err == nil && val != ""
}

// ParseRequestToken verifies the bearer token on the request and returns its
// claims. Revoked tokens count as invalid.
func ParseRequestToken(c *fiber.Ctx) (*security.AccessTokenClaims, error) {
	token := ExtractBearerToken(c)
	if token == "" {
		return nil, fmt.Errorf("missing bearer token")
	}
	claims, err := security.ParseAccessToken(token, JWTSecret())
	if err != nil {
		return nil, err
	}
	if IsTokenRevoked(claims.ID) {
		return nil, fmt.Errorf("token has been revoked")
	}
	return claims, nil
}
