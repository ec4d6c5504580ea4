package app

import (
	"impact-backend/internal/activities"
	"impact-backend/internal/auth"
	"impact-backend/internal/config"
	"impact-backend/internal/dashboard"
	"impact-backend/internal/database"
	"impact-backend/internal/finance"
	"impact-backend/internal/middleware"
	"impact-backend/internal/models"
	"impact-backend/internal/notify"
	"impact-backend/internal/projects"
	"impact-backend/internal/reference"
	"impact-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp loads connections from config and assembles the Fiber app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, err
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redis.NewClient(opts)

	app := New(db, rdb, cfg.AllowedOrigins)
	return app, db, rdb, nil
}

// New wires middleware and routes onto a fresh Fiber app. Connections are
// passed in so tests can run against sqlite and miniredis.
func New(db *gorm.DB, rdb *redis.Client, allowedOrigins []string) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: allowedOrigins}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	notifier := notify.Async{Next: notify.LogDispatcher{}}

	authService := &auth.Service{DB: db, Redis: rdb}
	authHandlers := &auth.Handlers{Service: authService}

	userService := &users.Service{DB: db, Notifier: notifier}
	userHandlers := &users.Handlers{Service: userService}

	activityService := &activities.Service{DB: db, Notifier: notifier}
	activityHandlers := &activities.Handlers{Service: activityService}

	dashboardService := &dashboard.Service{DB: db}
	dashboardHandlers := &dashboard.Handlers{Service: dashboardService}

	referenceService := &reference.Service{DB: db}
	referenceHandlers := &reference.Handlers{Service: referenceService}

	projectService := &projects.Service{DB: db}
	projectHandlers := &projects.Handlers{Service: projectService}

	financeService := &finance.Service{DB: db}
	financeHandlers := &finance.Handlers{Service: financeService}

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public routes
	app.Post("/api/auth/login", authHandlers.Login)
	app.Post("/api/users/accept-invitation", userHandlers.AcceptInvitation)

	authed := middleware.Authenticate(rdb)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	reviewers := middleware.RequireRoles(models.RoleManager, models.RoleAdmin)

	authGroup := app.Group("/api/auth", authed)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Post("/logout", authHandlers.Logout)

	userGroup := app.Group("/api/users", authed, adminOnly)
	userGroup.Get("/", userHandlers.List)
	userGroup.Post("/invite", userHandlers.Invite)
	userGroup.Post("/:id/resend-invitation", userHandlers.ResendInvitation)
	userGroup.Put("/:id", userHandlers.Update)
	userGroup.Delete("/:id", userHandlers.Delete)

	activityGroup := app.Group("/api/activities", authed)
	activityGroup.Get("/", activityHandlers.List)
	activityGroup.Post("/", activityHandlers.Create)
	activityGroup.Get("/:id", activityHandlers.Get)
	activityGroup.Put("/:id", activityHandlers.Update)
	activityGroup.Post("/:id/submit", activityHandlers.Submit)
	activityGroup.Post("/:id/validate", reviewers, activityHandlers.Validate)
	activityGroup.Delete("/:id", adminOnly, activityHandlers.Delete)

	dashboardGroup := app.Group("/api/dashboard", authed)
	dashboardGroup.Get("/stats", dashboardHandlers.Stats)
	dashboardGroup.Get("/activities-by-status", dashboardHandlers.ByStatus)
	dashboardGroup.Get("/participants-by-gender", dashboardHandlers.ByGender)
	dashboardGroup.Get("/activities-trend", dashboardHandlers.Trend)

	referenceGroup := app.Group("/api/reference/:category", authed)
	referenceGroup.Get("/", referenceHandlers.List)
	referenceGroup.Get("/:id", referenceHandlers.Get)
	referenceGroup.Get("/:id/children", referenceHandlers.Children)
	referenceGroup.Post("/", adminOnly, referenceHandlers.Create)
	referenceGroup.Put("/:id", adminOnly, referenceHandlers.Update)
	referenceGroup.Delete("/:id", adminOnly, referenceHandlers.Delete)

	projectGroup := app.Group("/api/projects", authed)
	projectGroup.Get("/", projectHandlers.List)
	projectGroup.Get("/:id", projectHandlers.Get)
	projectGroup.Post("/", adminOnly, projectHandlers.Create)
	projectGroup.Put("/:id", adminOnly, projectHandlers.Update)
	projectGroup.Delete("/:id", adminOnly, projectHandlers.Delete)
	projectGroup.Post("/:id/users", adminOnly, projectHandlers.AddMember)
	projectGroup.Delete("/:id/users/:userId", adminOnly, projectHandlers.RemoveMember)

	financeGroup := app.Group("/api/finance", authed)
	financeGroup.Get("/", financeHandlers.List)
	financeGroup.Get("/budget-overview", financeHandlers.BudgetOverview)
	financeGroup.Post("/", financeHandlers.Create)
	financeGroup.Put("/:id", financeHandlers.Update)
	financeGroup.Delete("/:id", financeHandlers.Delete)

	return app
}
