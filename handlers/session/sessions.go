package session

import (
	"time"

	"github.com/derstakip/api/model"
	"github.com/derstakip/api/utils/middleware"
	"github.com/derstakip/api/utils/response"
	"github.com/derstakip/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SessionHandler handles question-session requests
type SessionHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewSessionHandler creates a new question-session handler
func NewSessionHandler(db *gorm.DB) *SessionHandler {
	return &SessionHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateSessionRequest represents the request body for recording a session.
// Counters are pointers so zero counts still pass the required check.
type CreateSessionRequest struct {
	CourseID       *uint `json:"course_id" validate:"omitempty,min=1"`
	Duration       *int  `json:"duration" validate:"required,min=1"`
	TotalQuestions *int  `json:"total_questions" validate:"required,min=1"`
	CorrectAnswers *int  `json:"correct_answers" validate:"required,min=0"`
	WrongAnswers   *int  `json:"wrong_answers" validate:"required,min=0"`
	EmptyAnswers   *int  `json:"empty_answers" validate:"required,min=0"`
}

// ListSessions handles GET /api/v1/question-sessions
func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var sessions []model.QuestionSession
	if err := h.db.Where("user_id = ?", user.ID).
		Preload("Course").
		Order("start_time DESC").
		Find(&sessions).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch question sessions")
	}

	return response.Success(c, sessions)
}

// CreateSession handles POST /api/v1/question-sessions. Sessions are
// immutable once recorded; there is no update or delete.
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if *req.CorrectAnswers+*req.WrongAnswers+*req.EmptyAnswers != *req.TotalQuestions {
		return response.BadRequest(c, "Correct, wrong and empty answers must add up to the total question count")
	}

	now := time.Now()
	session := model.QuestionSession{
		UserID:         user.ID,
		CourseID:       req.CourseID,
		StartTime:      now,
		EndTime:        now.Add(time.Duration(*req.Duration) * time.Second),
		Duration:       *req.Duration,
		TotalQuestions: *req.TotalQuestions,
		CorrectAnswers: *req.CorrectAnswers,
		WrongAnswers:   *req.WrongAnswers,
		EmptyAnswers:   *req.EmptyAnswers,
	}

	if err := h.db.Create(&session).Error; err != nil {
		return response.InternalServerError(c, "Failed to record question session")
	}

	h.db.Preload("Course").First(&session, session.ID)

	return response.Created(c, session)
}
