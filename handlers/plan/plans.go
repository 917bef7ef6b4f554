package plan

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/derstakip/api/model"
	"github.com/derstakip/api/services/planner"
	"github.com/derstakip/api/utils/middleware"
	"github.com/derstakip/api/utils/response"
	"github.com/derstakip/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanHandler serves the study-plan canvas document. The server copy is the
// durable one; clients sync against it with last-write-wins saves.
type PlanHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewPlanHandler creates a new study-plan handler
func NewPlanHandler(db *gorm.DB) *PlanHandler {
	return &PlanHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// RestoreNodeRequest names the trashed node to bring back
type RestoreNodeRequest struct {
	ID string `json:"id" validate:"required"`
}

// LinkNodeRequest names the link target
type LinkNodeRequest struct {
	TargetID string `json:"target_id" validate:"required"`
}

// CompleteNodeRequest carries the outcome of a finished session node
type CompleteNodeRequest struct {
	TotalQuestions *int `json:"total_questions" validate:"required,min=1"`
	CorrectAnswers *int `json:"correct_answers" validate:"required,min=0"`
	WrongAnswers   *int `json:"wrong_answers" validate:"required,min=0"`
	EmptyAnswers   *int `json:"empty_answers" validate:"required,min=0"`
	Duration       *int `json:"duration" validate:"required,min=1"`
}

// loadPlan fetches the caller's plan row and decodes its document. A user
// without a saved plan gets a fresh row with an empty document.
func (h *PlanHandler) loadPlan(userID uint) (*model.StudyPlan, *planner.Document, error) {
	var plan model.StudyPlan
	err := h.db.Where("user_id = ?", userID).First(&plan).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		plan = model.StudyPlan{UserID: userID}
	}

	doc := &planner.Document{}
	if len(plan.Document) > 0 {
		if err := json.Unmarshal(plan.Document, doc); err != nil {
			return nil, nil, err
		}
	}
	return &plan, doc, nil
}

func (h *PlanHandler) savePlan(tx *gorm.DB, plan *model.StudyPlan, doc *planner.Document) error {
	doc.Normalize()
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	plan.Document = datatypes.JSON(raw)
	return tx.Save(plan).Error
}

// planError maps planner errors onto the response contract
func planError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, planner.ErrNodeNotFound):
		return response.NotFound(c, "Plan node not found")
	case errors.Is(err, planner.ErrSelfLink),
		errors.Is(err, planner.ErrCyclicLink),
		errors.Is(err, planner.ErrBadTransition),
		errors.Is(err, planner.ErrResultMismatch),
		errors.Is(err, planner.ErrDuplicateNode):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, "Failed to update study plan")
	}
}

// GetPlan handles GET /api/v1/plan
func (h *PlanHandler) GetPlan(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	_, doc, err := h.loadPlan(user.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load study plan")
	}

	return response.Success(c, doc)
}

// SavePlan handles PUT /api/v1/plan. The whole document is replaced,
// last write wins; no merge is attempted.
func (h *PlanHandler) SavePlan(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var doc planner.Document
	if err := c.BodyParser(&doc); err != nil {
		return response.BadRequest(c, "Invalid plan document")
	}

	plan, _, err := h.loadPlan(user.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load study plan")
	}
	if err := h.savePlan(h.db, plan, &doc); err != nil {
		return response.InternalServerError(c, "Failed to save study plan")
	}

	return response.SuccessWithMessage(c, "Study plan saved", doc)
}

// applyOp runs a document mutation and persists the result.
func (h *PlanHandler) applyOp(c *fiber.Ctx, userID uint, op func(*planner.Document) error) error {
	plan, doc, err := h.loadPlan(userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load study plan")
	}

	if err := op(doc); err != nil {
		return planError(c, err)
	}

	if err := h.savePlan(h.db, plan, doc); err != nil {
		return response.InternalServerError(c, "Failed to save study plan")
	}

	return response.Success(c, doc)
}

// DeleteNode handles DELETE /api/v1/plan/nodes/:id. The node moves to the
// five-slot undo buffer.
func (h *PlanHandler) DeleteNode(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id := c.Params("id")
	return h.applyOp(c, user.ID, func(doc *planner.Document) error {
		return doc.Delete(id)
	})
}

// RestoreNode handles POST /api/v1/plan/nodes/restore
func (h *PlanHandler) RestoreNode(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req RestoreNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	return h.applyOp(c, user.ID, func(doc *planner.Document) error {
		return doc.Restore(req.ID)
	})
}

// StartNode handles POST /api/v1/plan/nodes/:id/start
func (h *PlanHandler) StartNode(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id := c.Params("id")
	return h.applyOp(c, user.ID, func(doc *planner.Document) error {
		return doc.Start(id)
	})
}

// LinkNode handles POST /api/v1/plan/nodes/:id/link. Self-loops and cycles
// are refused.
func (h *PlanHandler) LinkNode(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req LinkNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	id := c.Params("id")
	return h.applyOp(c, user.ID, func(doc *planner.Document) error {
		return doc.Link(id, req.TargetID)
	})
}

// AutoLayout handles POST /api/v1/plan/layout
func (h *PlanHandler) AutoLayout(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	return h.applyOp(c, user.ID, func(doc *planner.Document) error {
		doc.AutoLayout()
		return nil
	})
}

// CompleteNode handles POST /api/v1/plan/nodes/:id/complete. Completing a
// node also records the derived question session; both writes share one
// transaction.
func (h *PlanHandler) CompleteNode(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CompleteNodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	plan, doc, err := h.loadPlan(user.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load study plan")
	}

	id := c.Params("id")
	node, err := doc.Node(id)
	if err != nil {
		return planError(c, err)
	}

	result := planner.NodeResult{
		TotalQuestions: *req.TotalQuestions,
		CorrectAnswers: *req.CorrectAnswers,
		WrongAnswers:   *req.WrongAnswers,
		EmptyAnswers:   *req.EmptyAnswers,
		Duration:       *req.Duration,
	}
	if err := doc.Complete(id, result); err != nil {
		return planError(c, err)
	}

	now := time.Now()
	session := model.QuestionSession{
		UserID:         user.ID,
		CourseID:       node.CourseID,
		StartTime:      now.Add(-time.Duration(result.Duration) * time.Second),
		EndTime:        now,
		Duration:       result.Duration,
		TotalQuestions: result.TotalQuestions,
		CorrectAnswers: result.CorrectAnswers,
		WrongAnswers:   result.WrongAnswers,
		EmptyAnswers:   result.EmptyAnswers,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		return h.savePlan(tx, plan, doc)
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to record completed session")
	}

	return response.SuccessWithMessage(c, "Session completed", fiber.Map{
		"plan":    doc,
		"session": session,
	})
}
