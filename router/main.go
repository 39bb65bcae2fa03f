package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/degreefyd-api/database"
	"github.com/sahilchouksey/degreefyd-api/handlers"
	auth_handlers "github.com/sahilchouksey/degreefyd-api/handlers/auth"
	college_handlers "github.com/sahilchouksey/degreefyd-api/handlers/college"
	dashboard_handlers "github.com/sahilchouksey/degreefyd-api/handlers/dashboard"
	"github.com/sahilchouksey/degreefyd-api/services"
	"github.com/sahilchouksey/degreefyd-api/utils/auth"
	"github.com/sahilchouksey/degreefyd-api/utils/middleware"
)

// Dependencies are the services the routes are served from
type Dependencies struct {
	Store      database.Storage
	Colleges   *services.CollegeService
	Auth       *services.AuthService
	JWTManager *auth.JWTManager
	Revoker    auth.Revoker
	BruteForce *middleware.BruteForceProtection
	Security   middleware.SecurityConfig
	Timeout    time.Duration
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	if deps.Timeout <= 0 {
		deps.Timeout = 10 * time.Second
	}

	// Initialize auth middleware with revocation and token version checks
	authMiddleware := middleware.NewAuthMiddleware(deps.JWTManager, deps.Revoker, deps.Store.Users())

	authHandler := auth_handlers.NewAuthHandler(deps.Auth, deps.BruteForce, deps.Timeout)
	collegeHandler := college_handlers.NewCollegeHandler(deps.Colleges, deps.Timeout)
	dashboardHandler := dashboard_handlers.NewDashboardHandler(deps.Colleges, deps.Timeout)

	// Apply security middleware
	middleware.SetupSecurity(app, deps.Security)

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(deps.Store))

	api := app.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", deps.BruteForce.CheckLockout(), authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/logout-all", authMiddleware.Required(), authHandler.LogoutAll)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.GetProfile)

	// Colleges routes. Admin paths are registered before /:slug so they are
	// not captured as slugs.
	colleges := api.Group("/colleges")
	colleges.Get("/", collegeHandler.ListColleges)                                                   // Public: paginated listing
	colleges.Get("/admin/all", authMiddleware.RequireAdmin(), collegeHandler.ListAllColleges)        // Admin only: every status
	colleges.Get("/admin/:id", authMiddleware.Required(), collegeHandler.GetCollegeByID)             // Protected: any status by id
	colleges.Get("/:slug", collegeHandler.GetCollegeBySlug)                                          // Public: published only
	colleges.Post("/", authMiddleware.RequireAdmin(), collegeHandler.CreateCollege)                  // Admin only: create
	colleges.Put("/:id", authMiddleware.RequireAdmin(), collegeHandler.UpdateCollege)                // Admin only: replace fields
	colleges.Delete("/:id", authMiddleware.RequireAdmin(), collegeHandler.DeleteCollege)             // Admin only: delete
	colleges.Patch("/:id/status", authMiddleware.RequireAdmin(), collegeHandler.ToggleCollegeStatus) // Admin only: draft <-> published
	colleges.Post("/:id/media", authMiddleware.RequireAdmin(), collegeHandler.UploadCollegeMedia)    // Admin only: image or logo upload

	// Dashboard routes
	dashboard := api.Group("/dashboard", authMiddleware.RequireAdmin())
	dashboard.Get("/stats", dashboardHandler.GetStats)
}
