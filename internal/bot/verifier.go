// ABOUTME: Bearer-token verification for inbound transport requests
// ABOUTME: HS256 JWTs signed with the configured app secret, audience-checked

package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenVerifier validates the Authorization header of an inbound request.
type TokenVerifier interface {
	Verify(authHeader string) error
}

// AllowAllVerifier accepts every request. Used when no app secret is
// configured (local development, emulator).
type AllowAllVerifier struct{}

// Verify always succeeds.
func (AllowAllVerifier) Verify(string) error { return nil }

// JWTVerifier validates HS256 bearer JWTs signed with the transport app
// secret. When an app id is configured, the token's audience must match it.
type JWTVerifier struct {
	appID  string
	secret []byte
}

// NewJWTVerifier creates a verifier for the given app id and secret.
func NewJWTVerifier(appID string, secret []byte) *JWTVerifier {
	return &JWTVerifier{appID: appID, secret: secret}
}

// Verify checks the bearer token's signature, expiry, and audience.
func (v *JWTVerifier) Verify(authHeader string) error {
	tokenString, err := extractBearerToken(authHeader)
	if err != nil {
		return err
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}

	if v.appID != "" {
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ErrInvalidToken
		}
		aud, _ := claims.GetAudience()
		for _, a := range aud {
			if a == v.appID {
				return nil
			}
		}
		return fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	}

	return nil
}

// Generate creates a token accepted by this verifier. Used by tests and by
// trusted transport adapters.
func (v *JWTVerifier) Generate(expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"aud": v.appID,
		"iat": now.Unix(),
		"exp": now.Add(expiresIn).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// extractBearerToken pulls the token out of an Authorization header.
func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", fmt.Errorf("%w: missing authorization header", ErrInvalidToken)
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("%w: invalid authorization header format", ErrInvalidToken)
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	return token, nil
}
