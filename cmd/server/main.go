package main

import (
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/flowboard/flowboard-api/internal/config"
	"github.com/flowboard/flowboard-api/internal/constants"
	"github.com/flowboard/flowboard-api/internal/database"
	"github.com/flowboard/flowboard-api/internal/handlers"
	"github.com/flowboard/flowboard-api/internal/middleware"
	"github.com/flowboard/flowboard-api/internal/repository"
	"github.com/flowboard/flowboard-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set up structured logging
	logger, err := newLogger(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Services
	authService := services.NewAuthService(userRepo)
	orgService := services.NewOrganizationService(orgRepo)
	boardService := services.NewBoardService(boardRepo)
	commandService := services.NewCommandService(taskRepo, boardRepo, activityRepo)
	taskService := services.NewTaskService(taskRepo, boardRepo, commandService)
	automationService := services.NewAutomationService(
		ruleRepo, taskRepo, boardRepo, linkRepo, activityRepo, commandService, cfg.Agent)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService)
	boardHandler := handlers.NewBoardHandler(boardService, orgService)
	taskHandler := handlers.NewTaskHandler(taskService, commandService)
	commandHandler := handlers.NewCommandHandler(commandService, automationService)
	webhookHandler := handlers.NewWebhookHandler(automationService)
	ruleHandler := handlers.NewRuleHandler(ruleRepo)
	activityHandler := handlers.NewActivityHandler(activityRepo, taskHandler)

	// Initialize Gin router
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		logger.Fatal("Failed to create Redis store", zap.Error(err))
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
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

		// Webhook routes (authenticated by the sender, not a session)
		api.POST("/webhooks/github/:id", webhookHandler.HandleGitHub)

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth())
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.POST("/join", orgHandler.JoinOrganization)
			orgs.GET("/:id", middleware.RequireOrganizationAccess(), orgHandler.GetOrganization)
			orgs.GET("/:id/rules", middleware.RequireOrganizationAccess(), ruleHandler.ListRules)
			orgs.POST("/:id/rules", middleware.RequireOrganizationAccess(), ruleHandler.CreateRule)
			orgs.PATCH("/:id/rules/:rule_id", middleware.RequireOrganizationAccess(), ruleHandler.UpdateRule)
			orgs.DELETE("/:id/rules/:rule_id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationOwner(), ruleHandler.DeleteRule)
		}

		// Board routes (protected)
		boards := api.Group("/boards")
		boards.Use(middleware.RequireAuth())
		{
			boards.POST("", boardHandler.CreateBoard)
			boards.GET("", boardHandler.ListBoards)
			boards.GET("/:id", middleware.RequireBoardAccess(), boardHandler.GetBoard)
			boards.GET("/:id/tasks", middleware.RequireBoardAccess(), taskHandler.ListTasks)
			boards.POST("/:id/tasks", middleware.RequireBoardAccess(), taskHandler.CreateTask)
			boards.POST("/:id/command", middleware.RequireBoardAccess(), commandHandler.ExecuteCommand)
			boards.GET("/:id/activity", middleware.RequireBoardAccess(), activityHandler.ListBoardActivity)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.POST("/:id/archive", taskHandler.ArchiveTask)
			tasks.GET("/:id/activity", activityHandler.ListTaskActivity)
		}
	}

	// Start server
	logger.Info("Server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func newLogger(level, mode string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if mode == "release" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zapCfg.Build()
}
