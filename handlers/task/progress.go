package task

import (
	"github.com/derstakip/api/model"
	"github.com/derstakip/api/utils/middleware"
	"github.com/derstakip/api/utils/response"
	"github.com/derstakip/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AddProgressRequest represents the request body for appending a progress entry
type AddProgressRequest struct {
	Percentage  *int   `json:"percentage" validate:"required,min=0,max=100"`
	Description string `json:"description" validate:"required,min=1,max=2000"`
}

// loadOwnedTask fetches the task and applies the 404/403 contract shared by
// both progress endpoints. Returns a nil task after writing the response.
func (h *TaskHandler) loadOwnedTask(c *fiber.Ctx, id string, userID uint) (*model.Task, error) {
	var task model.Task
	if err := h.db.First(&task, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NotFound(c, "Task not found")
		}
		return nil, response.InternalServerError(c, "Failed to fetch task")
	}
	if task.UserID != userID {
		return nil, response.Forbidden(c, "You do not have access to this task")
	}
	return &task, nil
}

// ListProgress handles GET /api/v1/gorevler/:id/ilerleme
func (h *TaskHandler) ListProgress(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	task, err := h.loadOwnedTask(c, c.Params("id"), user.ID)
	if task == nil {
		return err
	}

	var entries []model.TaskProgress
	if err := h.db.Where("task_id = ?", task.ID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch progress entries")
	}

	return response.Success(c, entries)
}

// AddProgress handles POST /api/v1/gorevler/:id/ilerleme. The new entry's
// percentage overwrites the task's completion percentage in the same
// transaction — last write wins, lower values included.
func (h *TaskHandler) AddProgress(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	task, err := h.loadOwnedTask(c, c.Params("id"), user.ID)
	if task == nil {
		return err
	}

	var req AddProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Description = validation.SanitizeString(req.Description)

	if req.Percentage == nil || *req.Percentage < 0 || *req.Percentage > 100 {
		return response.BadRequest(c, "Invalid progress percentage. Must be between 0 and 100.")
	}
	if req.Description == "" {
		return response.BadRequest(c, "Progress description is required")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	entry := model.TaskProgress{
		TaskID:      task.ID,
		Percentage:  *req.Percentage,
		Description: req.Description,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&model.Task{}).
			Where("id = ?", task.ID).
			Update("completion_percentage", entry.Percentage).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to record progress")
	}

	return response.Created(c, entry)
}
