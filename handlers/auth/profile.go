package auth

import (
	"github.com/derstakip/api/utils/middleware"
	"github.com/derstakip/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/v1/profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	return response.Success(c, toUserResponse(user))
}
