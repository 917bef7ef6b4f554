package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	Expiry        time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// Claims represents JWT claims
type Claims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// JWTManager handles JWT token operations
type JWTManager struct {
	config JWTConfig
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{
		config: config,
	}
}

// GenerateAccessToken generates a new access token and returns it with its JTI
func (j *JWTManager) GenerateAccessToken(userID uint, email string) (string, string, error) {
	return j.generate(userID, email, "access", j.config.Expiry)
}

// GenerateRefreshToken generates a new refresh token and returns it with its JTI
func (j *JWTManager) GenerateRefreshToken(userID uint, email string) (string, string, error) {
	return j.generate(userID, email, "refresh", j.config.RefreshExpiry)
}

func (j *JWTManager) generate(userID uint, email, tokenType string, expiry time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.New().String()

	claims := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.config.Issuer,
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(j.config.Secret))
	if err != nil {
		return "", "", err
	}

	return signedToken, jti, nil
}

// ValidateToken parses and validates a token string
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(j.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// AccessExpiry returns the configured access token lifetime
func (j *JWTManager) AccessExpiry() time.Duration {
	return j.config.Expiry
}

// RefreshExpiry returns the configured refresh token lifetime
func (j *JWTManager) RefreshExpiry() time.Duration {
	return j.config.RefreshExpiry
}
