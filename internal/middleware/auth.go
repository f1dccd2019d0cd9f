package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/devotionalai/api/internal/auth"
	"github.com/devotionalai/api/pkg/response"
)

// AuthMiddleware resolves the caller identity from a bearer token. Tokens
// signed with the service's HMAC secret are accepted directly; when an
// OIDC verifier is configured, externally-issued RS256 tokens work too.
type AuthMiddleware struct {
	jwtSecret string
	verifier  *auth.JWKSVerifier
}

func NewAuthMiddleware(jwtSecret string, verifier *auth.JWKSVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret, verifier: verifier}
}

// Authenticate validates the Authorization header and stores the caller
// identity in the request context.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return response.Unauthorized(c, "Invalid authorization header format")
		}
		tokenString := parts[1]

		claims, err := auth.ValidateToken(tokenString, m.jwtSecret)
		if err == nil {
			if claims.TokenType != auth.TokenTypeAccess {
				return response.Unauthorized(c, "Access token required")
			}
			c.Locals("userId", claims.UserID)
			c.Locals("email", claims.Email)
			return c.Next()
		}

		if m.verifier != nil {
			oidcClaims, oidcErr := m.verifier.Validate(tokenString)
			if oidcErr == nil {
				c.Locals("userId", oidcClaims.Subject)
				c.Locals("email", oidcClaims.Email)
				return c.Next()
			}
		}

		return response.Unauthorized(c, "Invalid or expired token")
	}
}

// GetUserID extracts the caller identity from the request context.
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals("userId").(string); ok {
		return userID
	}
	return ""
}
