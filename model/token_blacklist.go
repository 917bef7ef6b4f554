package model

import "time"

// TokenBlacklist stores revoked JWT IDs until their natural expiry.
// Expired rows are purged by a cron job.
type TokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JTI       string    `gorm:"uniqueIndex;not null" json:"jti"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
