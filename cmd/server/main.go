package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kbsvc/kanban-board-api/internal/config"
	"github.com/kbsvc/kanban-board-api/internal/database"
	"github.com/kbsvc/kanban-board-api/internal/handlers"
	"github.com/kbsvc/kanban-board-api/internal/middleware"
	"github.com/kbsvc/kanban-board-api/internal/repository"
	"github.com/kbsvc/kanban-board-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// The board UI runs in the browser; allow cross-origin requests
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	// Initialize services and handlers
	taskRepo := repository.NewTaskRepository(database.GetDB())
	taskService := services.NewTaskService(taskRepo)
	backupService := services.NewBackupService(taskRepo)
	taskHandler := handlers.NewTaskHandler(taskService)
	backupHandler := handlers.NewBackupHandler(backupService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "healthy",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/export", backupHandler.ExportTasks)
			tasks.POST("/import", backupHandler.ImportTasks)
			tasks.POST("/restore", backupHandler.RestoreTasks)
			tasks.GET("/:id", middleware.RequireTaskID(), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskID(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskID(), taskHandler.DeleteTask)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
