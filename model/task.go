package model

import (
	"time"

	"gorm.io/gorm"
)

// Priority levels for tasks
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Status values for tasks
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// Task is a trackable to-do item with priority, status, due date and a
// completion percentage maintained through its progress log
type Task struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
	UserID               uint           `gorm:"not null;index" json:"user_id"`
	CourseID             *uint          `gorm:"index" json:"course_id"`
	Title                string         `gorm:"not null" json:"title"`
	Description          string         `gorm:"type:text" json:"description,omitempty"`
	DueDate              *time.Time     `json:"due_date"`
	Priority             Priority       `gorm:"type:varchar(10);default:'MEDIUM'" json:"priority"`
	Status               TaskStatus     `gorm:"type:varchar(15);default:'TODO'" json:"status"`
	CompletionPercentage int            `gorm:"default:0" json:"completion_percentage"`
	ProgressLog          string         `gorm:"type:text" json:"progress_log,omitempty"`

	// Relationships
	User            User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course          *Course        `gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL" json:"course,omitempty"`
	ProgressEntries []TaskProgress `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidTaskStatus reports whether s is one of the known task statuses.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// TaskProgress is an append-only log record capturing a percentage/description
// snapshot for a task. There is no update or delete endpoint for entries.
type TaskProgress struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	TaskID      uint      `gorm:"not null;index" json:"task_id"`
	Percentage  int       `gorm:"not null" json:"percentage"`
	Description string    `gorm:"type:text;not null" json:"description"`

	Task Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}
