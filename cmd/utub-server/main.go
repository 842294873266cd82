package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/utubapp/utub-server/pkg/utub/auth"
	"github.com/utubapp/utub-server/pkg/utub/database"
	"github.com/utubapp/utub-server/pkg/utub/models"
	"github.com/utubapp/utub-server/pkg/utub/tags"
	"github.com/utubapp/utub-server/pkg/utub/urls"
	"github.com/utubapp/utub-server/pkg/utub/utubs"
)

func main() {
	// Get database path from environment or use default
	dbPath := os.Getenv("UTUB_DB_PATH")
	if dbPath == "" {
		dbPath = "utub.db"
	}

	// Connect to database
	if err := database.Connect(dbPath); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "utub",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(database.GetDB())
		authHandler.RegisterRoutes(api.Group("/auth"))

		// UTub routes (protected): lifecycle, membership, URLs, and tags
		// all hang off the same /utubs group
		utubsGroup := api.Group("/utubs")
		utubsGroup.Use(auth.AuthMiddleware())

		utubsHandler := utubs.NewHandler(database.GetDB())
		utubsHandler.RegisterRoutes(utubsGroup)

		urlsHandler := urls.NewHandler(database.GetDB())
		urlsHandler.RegisterRoutes(utubsGroup)

		tagsHandler := tags.NewHandler(database.GetDB())
		tagsHandler.RegisterRoutes(utubsGroup)
	}

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting UTub server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
