package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mkume/task-tracker/internal/config"
	"github.com/mkume/task-tracker/internal/database"
	"github.com/mkume/task-tracker/internal/handlers"
	"github.com/mkume/task-tracker/internal/logger"
	"github.com/mkume/task-tracker/internal/middleware"
	"github.com/mkume/task-tracker/internal/repository"
	"github.com/mkume/task-tracker/internal/services"
	"github.com/mkume/task-tracker/internal/token"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()

	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	tokens := token.NewManager(cfg.JWTSecret)

	// Initialize repositories and services
	userRepo := repository.NewUserRepository(database.GetDB())
	taskRepo := repository.NewTaskRepository(database.GetDB())
	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, tokens)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Tracker API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// User routes (register and login public, profile protected)
		users := api.Group("/users")
		{
			users.POST("/register", authHandler.Register)
			users.POST("/login", authHandler.Login)
			users.GET("/profile", middleware.RequireAuth(tokens), authHandler.GetProfile)
			users.PUT("/profile", middleware.RequireAuth(tokens), authHandler.UpdateProfile)
		}

		// Task routes: one of two pipelines, selected by AUTH_MODE. With
		// the gate mounted every operation is scoped to its owner; without
		// it the task collection is global.
		tasks := api.Group("/tasks")
		if cfg.AuthMode == config.AuthModeRequired {
			tasks.Use(middleware.RequireAuth(tokens))
		}
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}
	}

	// Start server
	log.Info().Str("port", cfg.Port).Str("auth_mode", cfg.AuthMode).Msg("Server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
