package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`

	// Relationships
	Courses          []Course          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Tasks            []Task            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	QuestionSessions []QuestionSession `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	StudyPlan        *StudyPlan        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist   []TokenBlacklist  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
