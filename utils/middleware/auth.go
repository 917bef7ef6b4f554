package middleware

import (
	"strings"

	"github.com/derstakip/api/model"
	"github.com/derstakip/api/utils/auth"
	"github.com/derstakip/api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// RequireUser is the shared ownership guard: every protected endpoint sits
// behind it. Missing or invalid credentials yield 401 before any persistence
// access; a valid token whose user record no longer exists yields 404.
func (m *AuthMiddleware) RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		tokenString := parts[1]

		// Validate token
		claims, err := m.jwtManager.ValidateToken(tokenString)
		if err != nil {
			if err == auth.ErrExpiredToken {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		// Check if it's an access token
		if claims.TokenType != "access" {
			return response.Unauthorized(c, "Invalid token type")
		}

		// Check if token is revoked (blacklisted)
		isRevoked, err := m.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
		if err != nil {
			return response.InternalServerError(c, "Failed to check token status")
		}
		if isRevoked {
			return response.Unauthorized(c, "Token has been revoked")
		}

		// Load user from database. Identity without a matching user record
		// is "not found", not "unauthorized".
		var user model.User
		if err := m.db.First(&user, claims.UserID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.NotFound(c, "User not found")
			}
			return response.InternalServerError(c, "Failed to load user")
		}

		// Store user info and full user object in context
		c.Locals("user_id", claims.UserID)
		c.Locals("user_email", claims.Email)
		c.Locals("claims", claims)
		c.Locals("user", &user)
		c.Locals("token_jti", claims.ID)

		return c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID := c.Locals("user_id")
	if userID == nil {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims := c.Locals("claims")
	if claims == nil {
		return nil, false
	}
	claimsData, ok := claims.(*auth.Claims)
	return claimsData, ok
}

// GetTokenJTI extracts the token JTI from context
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	jti := c.Locals("token_jti")
	if jti == nil {
		return "", false
	}
	j, ok := jti.(string)
	return j, ok
}
