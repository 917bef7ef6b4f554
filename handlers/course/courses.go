package course

import (
	"github.com/derstakip/api/model"
	"github.com/derstakip/api/utils/middleware"
	"github.com/derstakip/api/utils/response"
	"github.com/derstakip/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

// ListCourses handles GET /api/v1/dersler (and GET /api/v1/courses)
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var courses []model.Course
	if err := h.db.Where("user_id = ?", user.ID).
		Order("title ASC").
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Success(c, courses)
}

// CreateCourse handles POST /api/v1/dersler (and POST /api/v1/courses)
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeString(req.Description)

	if req.Title == "" {
		return response.BadRequest(c, "Course title is required")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	color := req.Color
	if color == "" {
		color = model.DefaultCourseColor
	}

	course := model.Course{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Color:       color,
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// SeedBasicCourses handles PATCH /api/v1/dersler. It inserts the fixed
// catalog courses the caller does not already have; idempotent by title.
func (h *CourseHandler) SeedBasicCourses(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var existing []model.Course
	if err := h.db.Select("title").
		Where("user_id = ?", user.ID).
		Find(&existing).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	existingTitles := make(map[string]bool, len(existing))
	for _, course := range existing {
		existingTitles[course.Title] = true
	}

	var toCreate []model.Course
	for _, basic := range model.BasicCourses {
		if existingTitles[basic.Title] {
			continue
		}
		toCreate = append(toCreate, model.Course{
			UserID: user.ID,
			Title:  basic.Title,
			Color:  basic.Color,
		})
	}

	if len(toCreate) == 0 {
		return response.SuccessWithMessage(c, "All basic courses already added", fiber.Map{
			"added_count": 0,
		})
	}

	if err := h.db.Create(&toCreate).Error; err != nil {
		return response.InternalServerError(c, "Failed to add basic courses")
	}

	return response.SuccessWithMessage(c, "Basic courses added successfully", fiber.Map{
		"added_count": len(toCreate),
	})
}

// DeleteCourse handles DELETE /api/v1/dersler/:id. Tasks referencing the
// course keep existing; the store nulls their course link.
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var course model.Course
	if err := h.db.First(&course, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	if course.UserID != user.ID {
		return response.Forbidden(c, "You do not have access to this course")
	}

	if err := h.db.Delete(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}
