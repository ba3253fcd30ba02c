package main

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/highcommand/highcommand/internal/config"
	"github.com/highcommand/highcommand/internal/constants"
	"github.com/highcommand/highcommand/internal/database"
	"github.com/highcommand/highcommand/internal/handlers"
	"github.com/highcommand/highcommand/internal/middleware"
	"github.com/highcommand/highcommand/internal/repository"
	"github.com/highcommand/highcommand/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// Session store: cookie by default, Redis when configured
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret), // authentication key
		)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to create Redis store")
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	policy := services.NewPolicyService(membershipRepo)
	authService := services.NewAuthService(userRepo)
	projectService := services.NewProjectService(projectRepo, policy)
	membershipService := services.NewMembershipService(projectRepo, userRepo, membershipRepo, policy)
	taskService := services.NewTaskService(taskRepo, projectRepo, policy)
	dashboardService := services.NewDashboardService(projectRepo, taskRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	taskHandler := handlers.NewTaskHandler(taskService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "HighCommand API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// User picker (protected)
		api.GET("/users", middleware.RequireAuth(), authHandler.ListUsers)

		// Dashboard (protected)
		api.GET("/dashboard", middleware.RequireAuth(), dashboardHandler.GetDashboard)

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/mine", projectHandler.ListMyProjects)
			projects.GET("/accessible", projectHandler.ListAccessibleProjects)
			projects.GET("/:project_id", projectHandler.GetProject)
			projects.PUT("/:project_id", projectHandler.UpdateProject)
			projects.PATCH("/:project_id/status", projectHandler.UpdateProjectStatus)
			projects.DELETE("/:project_id", projectHandler.DeleteProject)

			projects.POST("/:project_id/join", membershipHandler.RequestToJoin)
			projects.GET("/:project_id/members", membershipHandler.ListMembers)
			projects.POST("/:project_id/members", membershipHandler.AddMember)
			projects.DELETE("/:project_id/members/:user_id", membershipHandler.RemoveMember)
			projects.GET("/:project_id/requests", membershipHandler.ListPendingRequests)

			projects.POST("/:project_id/tasks", taskHandler.CreateTask)
			projects.GET("/:project_id/tasks", taskHandler.ListTasks)
			projects.GET("/:project_id/export", taskHandler.ExportTasks)
		}

		// Join request decisions (protected)
		requests := api.Group("/requests")
		requests.Use(middleware.RequireAuth())
		{
			requests.POST("/:request_id/approve", membershipHandler.ApproveRequest)
			requests.POST("/:request_id/reject", membershipHandler.RejectRequest)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("/mine", taskHandler.ListMyTasks)
			tasks.GET("/:task_id", taskHandler.GetTask)
			tasks.PATCH("/:task_id", taskHandler.UpdateTask)
			tasks.DELETE("/:task_id", taskHandler.DeleteTask)
			tasks.POST("/:task_id/complete", taskHandler.CompleteTask)
		}
	}

	// Start server
	logrus.WithField("port", cfg.Port).Info("Server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}
