package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/soilq/soilq-api/middleware"
)

// TestJWTSecret signs tokens accepted by a config with JWTSecret set to it
const TestJWTSecret = "soilq-test-secret-0123456789abcdef"

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, userID string, issuer string, scopes []string) {
	claims := MockValidatedClaims(userID, issuer, scopes)
	c.Set(middleware.ContextUserID, userID)
	c.Set(middleware.ContextClaims, claims)
	c.Set(middleware.ContextAccessToken, "test-access-token")
}

// MockAuthMiddleware authenticates every request as auth0ID with scopes
func MockAuthMiddleware(auth0ID string, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, auth0ID, middleware.LocalIssuer, scopes)
		c.Next()
	}
}

// MintToken signs an HS256 access token for subject that EnsureValidToken
// accepts when the config uses TestJWTSecret and the local issuer
func MintToken(t *testing.T, subject string, scopes ...string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"iss":   middleware.LocalIssuer,
		"aud":   []string{middleware.LocalAudience},
		"sub":   subject,
		"scope": strings.Join(scopes, " "),
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}
