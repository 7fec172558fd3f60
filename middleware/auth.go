package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soilq/soilq-api/config"
)

// Issuer and audience used for HS256 tokens when no Auth0 tenant is configured
const (
	LocalIssuer   = "soilq-local"
	LocalAudience = "soilq-api"
)

// Context keys set by EnsureValidToken
const (
	ContextUserID      = "user_id"
	ContextClaims      = "validated_claims"
	ContextAccessToken = "access_token"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope string `json:"scope"`
}

// Validate does nothing, but we need it to satisfy the
// validator.CustomClaims interface.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope checks whether our claims have a specific scope.
func (c CustomClaims) HasScope(expectedScope string) bool {
	for _, scope := range strings.Fields(c.Scope) {
		if scope == expectedScope {
			return true
		}
	}
	return false
}

// TokenIssuer returns the issuer tokens must carry for cfg. HS256 tokens
// are always local, even when an Auth0 domain is set for /userinfo.
func TokenIssuer(cfg *config.Config) string {
	if cfg.JWTSecret == "" && cfg.Auth0Domain != "" {
		return "https://" + cfg.Auth0Domain + "/"
	}
	return LocalIssuer
}

// TokenAudience returns the audience tokens must carry for cfg
func TokenAudience(cfg *config.Config) string {
	if cfg.JWTSecret == "" && cfg.Auth0Audience != "" {
		return cfg.Auth0Audience
	}
	return LocalAudience
}

// NewValidator builds the JWT validator for cfg. With JWT_SECRET set tokens
// are HS256 signed with it; otherwise they are RS256 tokens from Auth0.
func NewValidator(cfg *config.Config) (*validator.Validator, error) {
	issuer := TokenIssuer(cfg)
	audience := []string{TokenAudience(cfg)}
	customClaims := validator.WithCustomClaims(func() validator.CustomClaims {
		return &CustomClaims{}
	})
	skew := validator.WithAllowedClockSkew(time.Minute)

	if cfg.JWTSecret != "" {
		secret := []byte(cfg.JWTSecret)
		keyFunc := func(context.Context) (interface{}, error) { return secret, nil }
		return validator.New(keyFunc, validator.HS256, issuer, audience, customClaims, skew)
	}

	issuerURL, err := url.Parse(issuer)
	if err != nil {
		return nil, err
	}
	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
	return validator.New(provider.KeyFunc, validator.RS256, issuerURL.String(), audience, customClaims, skew)
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	jwtValidator, err := NewValidator(cfg)
	if err != nil {
		zap.L().Fatal("failed to set up the jwt validator", zap.Error(err))
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		zap.L().Info("rejected JWT", zap.Error(err), zap.String("path", r.URL.Path))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			zap.L().Warn("failed to write error response", zap.Error(writeErr))
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			passed = true
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			c.Set(ContextUserID, token.RegisteredClaims.Subject)
			c.Set(ContextClaims, token)
			if raw, err := jwtmiddleware.AuthHeaderTokenExtractor(r); err == nil {
				c.Set(ContextAccessToken, raw)
			}
			c.Request = r
			c.Next()
		}

		// Use the JWT middleware to check the token
		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetAccessToken returns the raw bearer token of the request
func GetAccessToken(c *gin.Context) (string, error) {
	token, exists := c.Get(ContextAccessToken)
	if !exists {
		return "", &AuthError{Code: "MISSING_TOKEN", Message: "Access token not found in context"}
	}

	tokenStr, ok := token.(string)
	if !ok || tokenStr == "" {
		return "", &AuthError{Code: "INVALID_TOKEN", Message: "Access token is not a string"}
	}

	return tokenStr, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ContextClaims)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// RequireScope is a middleware that checks if the token has a specific scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_CLAIMS",
					"message": "Could not retrieve token claims",
				},
			})
			return
		}

		customClaims, ok := claims.CustomClaims.(*CustomClaims)
		if !ok || !customClaims.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSUFFICIENT_SCOPE",
					"message": "Insufficient permissions to access this resource",
				},
			})
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
