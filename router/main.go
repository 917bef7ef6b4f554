package router

import (
	"log"
	"os"
	"time"

	"github.com/derstakip/api/database"
	"github.com/derstakip/api/handlers"
	auth_handlers "github.com/derstakip/api/handlers/auth"
	course_handlers "github.com/derstakip/api/handlers/course"
	plan_handlers "github.com/derstakip/api/handlers/plan"
	session_handlers "github.com/derstakip/api/handlers/session"
	task_handlers "github.com/derstakip/api/handlers/task"
	"github.com/derstakip/api/utils/auth"
	"github.com/derstakip/api/utils/cache"
	"github.com/derstakip/api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "derstakip-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize Redis cache for brute force protection
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Initialize handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(db)
	taskHandler := task_handlers.NewTaskHandler(db)
	sessionHandler := session_handlers.NewSessionHandler(db)
	planHandler := plan_handlers.NewPlanHandler(db)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error { return handlers.HandleCheckHealth(c, store) })

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authMiddleware.RequireUser(), authHandler.Logout)

	// Profile routes (protected)
	api.Get("/profile", authMiddleware.RequireUser(), authHandler.GetProfile)

	// Course routes; /courses and /dersler serve the same handlers, the
	// seeding PATCH lives on /dersler only
	courses := api.Group("/courses", authMiddleware.RequireUser())
	courses.Get("/", courseHandler.ListCourses)
	courses.Post("/", courseHandler.CreateCourse)

	dersler := api.Group("/dersler", authMiddleware.RequireUser())
	dersler.Get("/", courseHandler.ListCourses)
	dersler.Post("/", courseHandler.CreateCourse)
	dersler.Patch("/", courseHandler.SeedBasicCourses)
	dersler.Delete("/:id", courseHandler.DeleteCourse)

	// Task routes
	gorevler := api.Group("/gorevler", authMiddleware.RequireUser())
	gorevler.Get("/", taskHandler.ListTasks)
	gorevler.Post("/", taskHandler.CreateTask)
	gorevler.Get("/:id", taskHandler.GetTask)
	gorevler.Put("/:id", taskHandler.UpdateTask)
	gorevler.Delete("/:id", taskHandler.DeleteTask)

	// Task progress log (append-only)
	gorevler.Get("/:id/ilerleme", taskHandler.ListProgress)
	gorevler.Post("/:id/ilerleme", taskHandler.AddProgress)

	// Question session routes (create/list only; sessions are immutable)
	sessions := api.Group("/question-sessions", authMiddleware.RequireUser())
	sessions.Get("/", sessionHandler.ListSessions)
	sessions.Post("/", sessionHandler.CreateSession)

	// Study plan canvas (server-side copy, last-write-wins sync)
	plan := api.Group("/plan", authMiddleware.RequireUser())
	plan.Get("/", planHandler.GetPlan)
	plan.Put("/", planHandler.SavePlan)
	plan.Post("/layout", planHandler.AutoLayout)
	plan.Post("/nodes/restore", planHandler.RestoreNode)
	plan.Delete("/nodes/:id", planHandler.DeleteNode)
	plan.Post("/nodes/:id/start", planHandler.StartNode)
	plan.Post("/nodes/:id/complete", planHandler.CompleteNode)
	plan.Post("/nodes/:id/link", planHandler.LinkNode)
}
