package auth

import (
	"github.com/derstakip/api/model"
	"github.com/derstakip/api/utils/auth"
	"github.com/derstakip/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	ip := c.IP()

	// Find user by email
	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// Record failed attempt even if user not found
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Invalid email or password")
	}

	// Verify password
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Invalid email or password")
	}

	// Clear failed attempts on successful login
	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	tokens, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to issue tokens")
	}

	return response.Success(c, tokens)
}
