package auth

import (
	"github.com/derstakip/api/model"
	"github.com/derstakip/api/utils/auth"
	"github.com/derstakip/api/utils/response"
	"github.com/derstakip/api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Email = validation.SanitizeString(req.Email)

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Check if email is already taken
	var existing model.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "An account with this email already exists")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create account")
	}

	tokens, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to issue tokens")
	}

	return response.Created(c, tokens)
}
