package auth

import (
	"github.com/derstakip/api/model"
	"github.com/derstakip/api/utils/auth"
	"github.com/derstakip/api/utils/middleware"
	"github.com/derstakip/api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshToken handles POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		if err == auth.ErrExpiredToken {
			return response.Unauthorized(c, "Refresh token has expired")
		}
		return response.Unauthorized(c, "Invalid refresh token")
	}
	if claims.TokenType != "refresh" {
		return response.Unauthorized(c, "Invalid token type")
	}

	isRevoked, err := h.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check token status")
	}
	if isRevoked {
		return response.Unauthorized(c, "Token has been revoked")
	}

	var user model.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to load user")
	}

	tokens, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to issue tokens")
	}

	return response.Success(c, tokens)
}

// Logout handles POST /api/v1/auth/logout. The access token's JTI goes on
// the blacklist until the token would have expired anyway.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	claims, ok := middleware.GetClaims(c)
	if !ok || claims == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	if err := h.blacklistService.RevokeToken(c.Context(), claims.ID, user.ID, claims.ExpiresAt.Time); err != nil {
		return response.InternalServerError(c, "Failed to log out")
	}

	return response.SuccessWithMessage(c, "Logged out successfully", nil)
}
