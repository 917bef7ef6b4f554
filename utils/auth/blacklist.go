package auth

import (
	"context"
	"errors"
	"time"

	"github.com/derstakip/api/model"
	"gorm.io/gorm"
)

// BlacklistService tracks revoked token JTIs in the database
type BlacklistService struct {
	db *gorm.DB
}

// NewBlacklistService creates a new blacklist service
func NewBlacklistService(db *gorm.DB) *BlacklistService {
	return &BlacklistService{db: db}
}

// RevokeToken records a JTI as revoked until its expiry
func (s *BlacklistService) RevokeToken(ctx context.Context, jti string, userID uint, expiresAt time.Time) error {
	entry := model.TokenBlacklist{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

// IsTokenRevoked reports whether the JTI has been revoked
func (s *BlacklistService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var entry model.TokenBlacklist
	err := s.db.WithContext(ctx).Where("jti = ?", jti).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PurgeExpired deletes blacklist rows whose tokens have expired anyway
func (s *BlacklistService) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.TokenBlacklist{})
	return result.RowsAffected, result.Error
}
