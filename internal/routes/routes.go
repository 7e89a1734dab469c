package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atelierbook/atelier-backend/internal/dialog"
	"github.com/atelierbook/atelier-backend/internal/handlers"
	"github.com/atelierbook/atelier-backend/internal/services"
	"github.com/atelierbook/atelier-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, skill *services.SkillService, dialogStore dialog.Store) {
	app.Get("/health", handlers.HealthCheck)

	// Alice webhook
	alice := handlers.NewAliceHandler(skill, dialogStore)
	app.Post("/webhook/alice", alice.HandleWebhook)
	app.Get("/webhook/alice", alice.HandleProbe)

	// CRUD API used by the web UI
	api := app.Group("/api")

	clients := handlers.NewClientHandler(store)
	api.Get("/clients", clients.GetClients)
	api.Post("/clients", clients.CreateClient)
	api.Delete("/clients", clients.DeleteClient)

	products := handlers.NewProductHandler(store)
	api.Get("/products", products.GetProducts)
	api.Post("/products", products.CreateProduct)
	api.Delete("/products", products.DeleteProduct)

	measurements := handlers.NewMeasurementHandler(store)
	api.Get("/measurements", measurements.GetMeasurements)
	api.Post("/measurements", measurements.CreateMeasurement)
	api.Delete("/measurements", measurements.DeleteMeasurement)
}
