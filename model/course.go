package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultCourseColor is used when a course is created without a color.
const DefaultCourseColor = "#4F46E5"

// Course is a user-defined subject category tasks and sessions can be tagged with
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Color       string         `gorm:"type:varchar(9);default:'#4F46E5'" json:"color"`

	// Relationships. Deleting a course must not take its tasks with it.
	User             User              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Tasks            []Task            `gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL" json:"-"`
	QuestionSessions []QuestionSession `gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL" json:"-"`
}

// CourseSummary is the course shape embedded in task responses
type CourseSummary struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
}

// BasicCourse is one entry of the default course catalog
type BasicCourse struct {
	Title string
	Color string
}

// BasicCourses is the fixed catalog offered by the bulk-seed endpoint.
// Seeding is idempotent by title.
var BasicCourses = []BasicCourse{
	{Title: "Matematik", Color: "#FF5733"},
	{Title: "Fizik", Color: "#33FF57"},
	{Title: "Kimya", Color: "#3357FF"},
	{Title: "Biyoloji", Color: "#F033FF"},
	{Title: "Türkçe", Color: "#FF3333"},
	{Title: "Tarih", Color: "#33FFF3"},
	{Title: "Coğrafya", Color: "#FFB533"},
	{Title: "İngilizce", Color: "#335FFF"},
	{Title: "Felsefe", Color: "#9933FF"},
	{Title: "Edebiyat", Color: "#FF3380"},
}
