package task

import (
	"errors"
	"strings"
	"time"

	"github.com/derstakip/api/model"
	"github.com/derstakip/api/utils/middleware"
	"github.com/derstakip/api/utils/response"
	"github.com/derstakip/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title                string `json:"title" validate:"required,min=1,max=255"`
	Description          string `json:"description" validate:"omitempty,max=2000"`
	DueDate              string `json:"due_date" validate:"omitempty"`
	Priority             string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status               string `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	CompletionPercentage int    `json:"completion_percentage" validate:"omitempty,min=0,max=100"`
	ProgressLog          string `json:"progress_log" validate:"omitempty"`
	CourseID             *uint  `json:"course_id" validate:"omitempty,min=1"`
}

// UpdateTaskRequest represents a partial task update. Omitted fields keep
// their previous values. course_id 0 detaches the course; due_date "" clears
// the due date.
type UpdateTaskRequest struct {
	Title                *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description          *string `json:"description" validate:"omitempty,max=2000"`
	DueDate              *string `json:"due_date"`
	Priority             *string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status               *string `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	CompletionPercentage *int    `json:"completion_percentage" validate:"omitempty,min=0,max=100"`
	ProgressLog          *string `json:"progress_log"`
	CourseID             *uint   `json:"course_id"`
}

// courseSummary narrows preloaded courses to id/title/color.
func courseSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "title", "color")
}

// isForeignKeyViolation detects dangling course references surfaced by the
// store. The original contract maps these to 400, not 500.
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(err.Error(), "foreign key constraint")
}

// ListTasks handles GET /api/v1/gorevler
func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID := c.Query("courseId", "")
	status := c.Query("status", "")

	query := h.db.Model(&model.Task{}).Where("user_id = ?", user.ID)
	if courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []model.Task
	if err := query.Preload("Course", courseSummary).
		Order("due_date ASC NULLS LAST").
		Find(&tasks).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch tasks")
	}

	return response.Success(c, tasks)
}

// CreateTask handles POST /api/v1/gorevler
func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeString(req.Description)

	if req.Title == "" {
		return response.BadRequest(c, "Task title is required")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return response.BadRequest(c, "Invalid due date, expected RFC3339")
		}
		dueDate = &parsed
	}

	priority := model.Priority(req.Priority)
	if priority == "" {
		priority = model.PriorityMedium
	}
	status := model.TaskStatus(req.Status)
	if status == "" {
		status = model.StatusTodo
	}

	task := model.Task{
		UserID:               user.ID,
		CourseID:             req.CourseID,
		Title:                req.Title,
		Description:          req.Description,
		DueDate:              dueDate,
		Priority:             priority,
		Status:               status,
		CompletionPercentage: req.CompletionPercentage,
		ProgressLog:          req.ProgressLog,
	}

	if err := h.db.Create(&task).Error; err != nil {
		// The course id is not pre-validated; the store rejects dangling ones
		if isForeignKeyViolation(err) {
			return response.BadRequest(c, "Invalid course id. Pick an existing course or leave it empty.")
		}
		return response.InternalServerError(c, "Failed to create task")
	}

	return response.Created(c, task)
}

// GetTask handles GET /api/v1/gorevler/:id
func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	id := c.Params("id")

	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var task model.Task
	if err := h.db.Preload("Course", courseSummary).
		First(&task, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Task not found")
		}
		return response.InternalServerError(c, "Failed to fetch task")
	}

	if task.UserID != user.ID {
		return response.Forbidden(c, "You do not have access to this task")
	}

	return response.Success(c, task)
}

// UpdateTask handles PUT /api/v1/gorevler/:id
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	id := c.Params("id")

	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var task model.Task
	if err := h.db.First(&task, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Task not found")
		}
		return response.InternalServerError(c, "Failed to fetch task")
	}

	if task.UserID != user.ID {
		return response.Forbidden(c, "You do not have permission to edit this task")
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Every omitted field keeps its previous value
	if req.Title != nil {
		title := validation.SanitizeString(*req.Title)
		if title == "" {
			return response.BadRequest(c, "Task title cannot be empty")
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = validation.SanitizeString(*req.Description)
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			task.DueDate = nil
		} else {
			parsed, err := time.Parse(time.RFC3339, *req.DueDate)
			if err != nil {
				return response.BadRequest(c, "Invalid due date, expected RFC3339")
			}
			task.DueDate = &parsed
		}
	}
	if req.Priority != nil {
		task.Priority = model.Priority(*req.Priority)
	}
	if req.Status != nil {
		task.Status = model.TaskStatus(*req.Status)
	}
	if req.CompletionPercentage != nil {
		task.CompletionPercentage = *req.CompletionPercentage
	}
	if req.ProgressLog != nil {
		task.ProgressLog = *req.ProgressLog
	}
	if req.CourseID != nil {
		if *req.CourseID == 0 {
			task.CourseID = nil
		} else {
			task.CourseID = req.CourseID
		}
	}

	if err := h.db.Save(&task).Error; err != nil {
		if isForeignKeyViolation(err) {
			return response.BadRequest(c, "Invalid course id. Pick an existing course or leave it empty.")
		}
		return response.InternalServerError(c, "Failed to update task")
	}

	// Preload course summary for the response
	h.db.Preload("Course", courseSummary).First(&task, task.ID)

	return response.SuccessWithMessage(c, "Task updated successfully", task)
}

// DeleteTask handles DELETE /api/v1/gorevler/:id. Progress entries go with
// the task via the store's cascade.
func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	id := c.Params("id")

	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var task model.Task
	if err := h.db.First(&task, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Task not found")
		}
		return response.InternalServerError(c, "Failed to fetch task")
	}

	if task.UserID != user.ID {
		return response.Forbidden(c, "You do not have permission to delete this task")
	}

	if err := h.db.Delete(&task).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete task")
	}

	return response.SuccessWithMessage(c, "Task deleted successfully", nil)
}
