package auth

import (
	"time"

	"github.com/derstakip/api/model"
	"github.com/derstakip/api/utils/auth"
	"github.com/derstakip/api/utils/middleware"
	"github.com/derstakip/api/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles registration, login and token management
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *auth.JWTManager
	blacklistService     *auth.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *auth.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     auth.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// UserResponse is the user shape returned by auth endpoints
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}

// TokenResponse carries a fresh token pair
type TokenResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

func (h *AuthHandler) issueTokens(user *model.User) (*TokenResponse, error) {
	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		User:         toUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.jwtManager.AccessExpiry().Seconds()),
	}, nil
}
