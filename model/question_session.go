package model

import (
	"time"

	"gorm.io/gorm"
)

// QuestionSession records a timed practice set with counts of correct, wrong
// and empty answers. Sessions are immutable once recorded.
type QuestionSession struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	CourseID       *uint          `gorm:"index" json:"course_id"`
	StartTime      time.Time      `gorm:"not null" json:"start_time"`
	EndTime        time.Time      `gorm:"not null" json:"end_time"`
	Duration       int            `gorm:"not null" json:"duration"` // seconds
	TotalQuestions int            `gorm:"not null" json:"total_questions"`
	CorrectAnswers int            `gorm:"not null" json:"correct_answers"`
	WrongAnswers   int            `gorm:"not null" json:"wrong_answers"`
	EmptyAnswers   int            `gorm:"not null" json:"empty_answers"`

	User   User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL" json:"course,omitempty"`
}
