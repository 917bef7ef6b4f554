package auth

import (
	"errors"
	"testing"
	"time"
)

func testManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-please-ignore",
		Expiry:        expiry,
		RefreshExpiry: 2 * expiry,
		Issuer:        "derstakip-test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := testManager(time.Minute)

	token, jti, err := m.GenerateAccessToken(42, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if jti == "" {
		t.Fatal("empty JTI")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "user@example.com" {
		t.Errorf("wrong claims: %+v", claims)
	}
	if claims.TokenType != "access" {
		t.Errorf("token type = %s, want access", claims.TokenType)
	}
	if claims.ID != jti {
		t.Errorf("claims JTI %s != returned JTI %s", claims.ID, jti)
	}
}

func TestRefreshTokenHasRefreshType(t *testing.T) {
	m := testManager(time.Minute)

	token, _, err := m.GenerateRefreshToken(7, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("token type = %s, want refresh", claims.TokenType)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := testManager(-time.Minute) // already expired at issue time

	token, _, err := m.GenerateAccessToken(1, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := testManager(time.Minute)
	other := NewJWTManager(JWTConfig{Secret: "different-secret", Expiry: time.Minute})

	token, _, err := m.GenerateAccessToken(1, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
