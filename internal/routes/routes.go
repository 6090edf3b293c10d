package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liwei/stride-api/internal/handlers"
	"github.com/liwei/stride-api/internal/middleware"
)

// Setup mounts the API. In local driver mode there is no user store,
// so the auth routes are skipped and everything is unprotected (the
// scope is the device itself).
func Setup(app *fiber.App, localMode bool) {
	api := app.Group("/api")

	protected := api
	if !localMode {
		auth := api.Group("/auth")
		auth.Post("/register", handlers.Register)
		auth.Post("/login", handlers.Login)

		protected = api.Group("/", middleware.Protected())
		protected.Get("/me", handlers.GetMe)
	}

	goals := protected.Group("/goals")
	goals.Get("/", handlers.GetGoals)
	goals.Post("/", handlers.CreateGoal)
	goals.Post("/restore", handlers.RestoreGoal)
	goals.Put("/:id", handlers.UpdateGoal)
	goals.Delete("/:id", handlers.DeleteGoal)
	goals.Post("/:id/archive", handlers.ArchiveGoal)
	goals.Post("/:id/restore", handlers.RestoreFromArchive)
	goals.Get("/:id/stats", handlers.GetGoalStats)
	goals.Get("/:id/today", handlers.GetTodayProgress)
	goals.Post("/:id/records", handlers.AddRecord)

	protected.Get("/records", handlers.GetRecords)

	protected.Post("/onboarding/complete", handlers.CompleteOnboarding)
	protected.Post("/reset", handlers.ResetData)
	protected.Get("/backup", handlers.Backup)
}
