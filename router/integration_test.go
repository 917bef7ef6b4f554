package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/derstakip/api/database"
	"github.com/derstakip/api/router"
	"github.com/gofiber/fiber/v2"
)

// These tests exercise the whole HTTP surface against a real PostgreSQL
// instance. They require:
// 1. RUN_INTEGRATION_TESTS=true
// 2. The usual DB_* environment variables pointing at a test database
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "integration-test-secret")
	}

	store, err := database.StartGORM()
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	app := fiber.New()
	router.SetupRoutes(app, store)
	return app
}

type apiResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Error   map[string]interface{} `json:"error"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return resp.StatusCode, parsed
}

func decodeData(t *testing.T, resp apiResponse, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

// registerUser creates a fresh account and returns its access token.
func registerUser(t *testing.T, app *fiber.App) string {
	t.Helper()

	email := fmt.Sprintf("it-%d@example.com", time.Now().UnixNano())
	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":    email,
		"password": "integration-pass",
		"name":     "Integration",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: status %d, error %v", status, resp.Error)
	}

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, resp, &tokens)
	if tokens.AccessToken == "" {
		t.Fatal("register returned no access token")
	}
	return tokens.AccessToken
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{"/api/v1/dersler/", "/api/v1/gorevler/", "/api/v1/question-sessions/", "/api/v1/plan/"} {
		status, _ := doJSON(t, app, http.MethodGet, path, "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status %d, want 401", path, status)
		}
	}
}

func TestCourseSeedingIsIdempotent(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app)

	var seeded struct {
		AddedCount int `json:"added_count"`
	}

	status, resp := doJSON(t, app, http.MethodPatch, "/api/v1/dersler/", token, nil)
	if status != http.StatusOK {
		t.Fatalf("first seed: status %d, error %v", status, resp.Error)
	}
	decodeData(t, resp, &seeded)
	if seeded.AddedCount != 10 {
		t.Errorf("first seed added %d courses, want 10", seeded.AddedCount)
	}

	status, resp = doJSON(t, app, http.MethodPatch, "/api/v1/dersler/", token, nil)
	if status != http.StatusOK {
		t.Fatalf("second seed: status %d", status)
	}
	decodeData(t, resp, &seeded)
	if seeded.AddedCount != 0 {
		t.Errorf("second seed added %d courses, want 0", seeded.AddedCount)
	}
}

func TestCourseCreateDefaultsColor(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app)

	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/dersler/", token, map[string]interface{}{
		"title": "Geometri",
	})
	if status != http.StatusCreated {
		t.Fatalf("create course: status %d, error %v", status, resp.Error)
	}

	var course struct {
		Title string `json:"title"`
		Color string `json:"color"`
	}
	decodeData(t, resp, &course)
	if course.Color != "#4F46E5" {
		t.Errorf("default color = %s, want #4F46E5", course.Color)
	}

	// Missing title is a validation failure
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/dersler/", token, map[string]interface{}{
		"description": "missing title",
	})
	if status != http.StatusBadRequest {
		t.Errorf("create without title: status %d, want 400", status)
	}
}

func TestTaskLifecycle(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app)

	// Create with defaults
	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/gorevler/", token, map[string]interface{}{
		"title": "Read Ch.1",
	})
	if status != http.StatusCreated {
		t.Fatalf("create task: status %d, error %v", status, resp.Error)
	}

	var task struct {
		ID                   uint   `json:"id"`
		Title                string `json:"title"`
		Priority             string `json:"priority"`
		Status               string `json:"status"`
		CompletionPercentage int    `json:"completion_percentage"`
	}
	decodeData(t, resp, &task)
	if task.Status != "TODO" || task.Priority != "MEDIUM" || task.CompletionPercentage != 0 {
		t.Errorf("unexpected defaults: %+v", task)
	}

	taskPath := fmt.Sprintf("/api/v1/gorevler/%d", task.ID)

	// Partial update: only priority changes, everything else keeps its value
	status, resp = doJSON(t, app, http.MethodPut, taskPath, token, map[string]interface{}{
		"priority": "HIGH",
	})
	if status != http.StatusOK {
		t.Fatalf("update task: status %d, error %v", status, resp.Error)
	}
	decodeData(t, resp, &task)
	if task.Priority != "HIGH" {
		t.Errorf("priority = %s, want HIGH", task.Priority)
	}
	if task.Title != "Read Ch.1" || task.Status != "TODO" {
		t.Errorf("omitted fields changed: %+v", task)
	}

	// Progress append overwrites the task's completion percentage
	status, resp = doJSON(t, app, http.MethodPost, taskPath+"/ilerleme", token, map[string]interface{}{
		"percentage":  40,
		"description": "half done",
	})
	if status != http.StatusCreated {
		t.Fatalf("add progress: status %d, error %v", status, resp.Error)
	}

	status, resp = doJSON(t, app, http.MethodGet, taskPath, token, nil)
	if status != http.StatusOK {
		t.Fatalf("get task: status %d", status)
	}
	decodeData(t, resp, &task)
	if task.CompletionPercentage != 40 {
		t.Errorf("completion = %d, want 40", task.CompletionPercentage)
	}

	// A lower percentage regresses the task; that is the contract
	status, _ = doJSON(t, app, http.MethodPost, taskPath+"/ilerleme", token, map[string]interface{}{
		"percentage":  10,
		"description": "found more work",
	})
	if status != http.StatusCreated {
		t.Fatalf("add regressing progress: status %d", status)
	}
	_, resp = doJSON(t, app, http.MethodGet, taskPath, token, nil)
	decodeData(t, resp, &task)
	if task.CompletionPercentage != 10 {
		t.Errorf("completion = %d, want 10 after regression", task.CompletionPercentage)
	}

	// Out-of-range percentage is refused
	status, _ = doJSON(t, app, http.MethodPost, taskPath+"/ilerleme", token, map[string]interface{}{
		"percentage":  101,
		"description": "impossible",
	})
	if status != http.StatusBadRequest {
		t.Errorf("percentage 101: status %d, want 400", status)
	}

	// Dangling course reference maps to 400, not 500
	status, _ = doJSON(t, app, http.MethodPut, taskPath, token, map[string]interface{}{
		"course_id": 999999999,
	})
	if status != http.StatusBadRequest {
		t.Errorf("dangling course id: status %d, want 400", status)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	app := setupApp(t)
	owner := registerUser(t, app)
	intruder := registerUser(t, app)

	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/gorevler/", owner, map[string]interface{}{
		"title": "Private task",
	})
	if status != http.StatusCreated {
		t.Fatalf("create task: status %d", status)
	}
	var task struct {
		ID uint `json:"id"`
	}
	decodeData(t, resp, &task)

	taskPath := fmt.Sprintf("/api/v1/gorevler/%d", task.ID)

	if status, _ := doJSON(t, app, http.MethodGet, taskPath, intruder, nil); status != http.StatusForbidden {
		t.Errorf("foreign GET: status %d, want 403", status)
	}
	if status, _ := doJSON(t, app, http.MethodPut, taskPath, intruder, map[string]interface{}{"title": "stolen"}); status != http.StatusForbidden {
		t.Errorf("foreign PUT: status %d, want 403", status)
	}
	if status, _ := doJSON(t, app, http.MethodDelete, taskPath, intruder, nil); status != http.StatusForbidden {
		t.Errorf("foreign DELETE: status %d, want 403", status)
	}
	if status, _ := doJSON(t, app, http.MethodPost, taskPath+"/ilerleme", intruder, map[string]interface{}{
		"percentage": 1, "description": "nope",
	}); status != http.StatusForbidden {
		t.Errorf("foreign progress POST: status %d, want 403", status)
	}

	// The owner still sees the task untouched
	status, resp = doJSON(t, app, http.MethodGet, taskPath, owner, nil)
	if status != http.StatusOK {
		t.Fatalf("owner GET after intrusion attempts: status %d", status)
	}
}

func TestQuestionSessionInvariant(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app)

	// 6+3+2 != 10 → rejected
	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/question-sessions/", token, map[string]interface{}{
		"duration":        600,
		"total_questions": 10,
		"correct_answers": 6,
		"wrong_answers":   3,
		"empty_answers":   2,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("mismatched counts: status %d, want 400", status)
	}

	// 6+3+1 == 10 → accepted, endTime = startTime + duration
	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/question-sessions/", token, map[string]interface{}{
		"duration":        600,
		"total_questions": 10,
		"correct_answers": 6,
		"wrong_answers":   3,
		"empty_answers":   1,
	})
	if status != http.StatusCreated {
		t.Fatalf("valid session: status %d, error %v", status, resp.Error)
	}

	var session struct {
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
		Duration  int       `json:"duration"`
	}
	decodeData(t, resp, &session)
	if got := session.EndTime.Sub(session.StartTime); got != 600*time.Second {
		t.Errorf("end-start = %v, want 600s", got)
	}

	// Zero counts are still valid input
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/question-sessions/", token, map[string]interface{}{
		"duration":        60,
		"total_questions": 5,
		"correct_answers": 5,
		"wrong_answers":   0,
		"empty_answers":   0,
	})
	if status != http.StatusCreated {
		t.Errorf("session with zero wrong/empty: status %d, want 201", status)
	}
}

func TestStudyPlanRoundTrip(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app)

	doc := map[string]interface{}{
		"nodes": []map[string]interface{}{
			{"id": "s1", "topic": "Limits", "target_questions": 20, "planned_duration": 1800},
			{"id": "s2", "topic": "Derivatives", "target_questions": 30, "planned_duration": 2400},
		},
	}
	if status, resp := doJSON(t, app, http.MethodPut, "/api/v1/plan/", token, doc); status != http.StatusOK {
		t.Fatalf("save plan: status %d, error %v", status, resp.Error)
	}

	// Linking is fine one way, a cycle the other way is refused
	if status, _ := doJSON(t, app, http.MethodPost, "/api/v1/plan/nodes/s1/link", token, map[string]interface{}{"target_id": "s2"}); status != http.StatusOK {
		t.Fatalf("link s1→s2: status %d", status)
	}
	if status, _ := doJSON(t, app, http.MethodPost, "/api/v1/plan/nodes/s2/link", token, map[string]interface{}{"target_id": "s1"}); status != http.StatusBadRequest {
		t.Errorf("cycle link s2→s1: status %d, want 400", status)
	}

	// Completing requires starting first
	if status, _ := doJSON(t, app, http.MethodPost, "/api/v1/plan/nodes/s1/complete", token, map[string]interface{}{
		"total_questions": 20, "correct_answers": 15, "wrong_answers": 5, "empty_answers": 0, "duration": 1700,
	}); status != http.StatusBadRequest {
		t.Errorf("complete before start: status %d, want 400", status)
	}

	if status, _ := doJSON(t, app, http.MethodPost, "/api/v1/plan/nodes/s1/start", token, nil); status != http.StatusOK {
		t.Fatalf("start s1: status %d", status)
	}
	if status, resp := doJSON(t, app, http.MethodPost, "/api/v1/plan/nodes/s1/complete", token, map[string]interface{}{
		"total_questions": 20, "correct_answers": 15, "wrong_answers": 5, "empty_answers": 0, "duration": 1700,
	}); status != http.StatusOK {
		t.Fatalf("complete s1: status %d, error %v", status, resp.Error)
	}

	// Completing a node records a derived question session
	status, resp := doJSON(t, app, http.MethodGet, "/api/v1/question-sessions/", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list sessions: status %d", status)
	}
	var sessions []struct {
		TotalQuestions int `json:"total_questions"`
	}
	decodeData(t, resp, &sessions)
	if len(sessions) != 1 || sessions[0].TotalQuestions != 20 {
		t.Errorf("derived sessions = %+v, want one with 20 questions", sessions)
	}

	// Delete moves to trash, restore brings it back
	if status, _ := doJSON(t, app, http.MethodDelete, "/api/v1/plan/nodes/s2", token, nil); status != http.StatusOK {
		t.Fatalf("delete s2: status %d", status)
	}
	status, resp = doJSON(t, app, http.MethodPost, "/api/v1/plan/nodes/restore", token, map[string]interface{}{"id": "s2"})
	if status != http.StatusOK {
		t.Fatalf("restore s2: status %d", status)
	}

	var plan struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
	}
	decodeData(t, resp, &plan)
	if len(plan.Nodes) != 2 {
		t.Errorf("plan has %d nodes after restore, want 2", len(plan.Nodes))
	}
}
