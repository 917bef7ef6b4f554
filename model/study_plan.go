package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StudyPlan holds a user's planning-canvas document as a JSON column.
// One row per user; saves are last-write-wins. The document structure is
// owned by services/planner.
type StudyPlan struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Document  datatypes.JSON `gorm:"type:jsonb" json:"document"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
