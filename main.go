package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/atelierbook/atelier-backend/database"
	"github.com/atelierbook/atelier-backend/internal/dialog"
	"github.com/atelierbook/atelier-backend/internal/models"
	"github.com/atelierbook/atelier-backend/internal/routes"
	"github.com/atelierbook/atelier-backend/internal/services"
	"github.com/atelierbook/atelier-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("⚠️  No .env file found - checking environment variables")
		}
	}

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing)
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		// Run migrations
		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Client{},
			&models.Product{},
			&models.Measurement{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Dialog state: Redis when configured, otherwise in-process.
	// With several instances behind a load balancer the in-process
	// store would split conversations between instances, so REDIS_URL
	// should be set in that deployment shape.
	var dialogStore dialog.Store
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		log.Println("📦 Connecting to Redis for dialog state...")
		redisStore, err := dialog.NewRedisStore(context.Background(), redisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		dialogStore = redisStore
		log.Println("✅ Using Redis dialog state storage")
	} else {
		dialogStore = dialog.NewMemoryStore()
		log.Println("⚠️  Using in-process dialog state (lost on restart)")
	}

	skill := services.NewSkillService(store, dialogStore)

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Atelier Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Root endpoint with storage status
	app.Get("/", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service":     "Atelier Backend API",
			"version":     "1.0.0",
			"status":      "healthy",
			"environment": getEnvironment(),
			"storage":     getStorageType(),
			"endpoints": fiber.Map{
				"health":  "/health",
				"api":     "/api",
				"webhook": "/webhook/alice",
			},
		}

		// Add database status and record counts when using the database
		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			dbStatus := "connected"
			if err != nil {
				dbStatus = "error: " + err.Error()
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error: " + err.Error()
			}

			var clientCount, productCount, measurementCount int64
			database.DB.Model(&models.Client{}).Count(&clientCount)
			database.DB.Model(&models.Product{}).Count(&productCount)
			database.DB.Model(&models.Measurement{}).Count(&measurementCount)

			response["database"] = fiber.Map{
				"status":       dbStatus,
				"clients":      clientCount,
				"products":     productCount,
				"measurements": measurementCount,
			}
		}

		return c.JSON(response)
	})

	// Setup routes
	routes.SetupRoutes(app, store, skill, dialogStore)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 Atelier Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("🌍 Environment: %s", getEnvironment())
	log.Println("🧵 Alice webhook: /webhook/alice")
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getEnvironment() string {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return "Production (Cloud Run)"
	}
	return "Development (Local)"
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}
