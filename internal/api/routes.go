package api

import (
	"alcyxob/boxing-app/internal/config"
	"alcyxob/boxing-app/internal/domain"
	"alcyxob/boxing-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services groups what the handlers depend on.
type Services struct {
	Auth      service.AuthService
	Progress  service.ProgressService
	Programs  service.ProgramService
	Movements service.MovementService
}

func SetupRoutes(router *gin.Engine, cfg config.Config, services Services, logger *zap.Logger) {
	if len(cfg.Server.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true, // token cookies
			MaxAge:           12 * time.Hour,
		}))
	}

	authHandler := NewAuthHandler(services.Auth, logger, cfg.Server.Mode == gin.ReleaseMode)
	progressHandler := NewProgressHandler(services.Progress, logger)
	programHandler := NewProgramHandler(services.Programs, logger, cfg.Upload.MaxBytes)
	movementHandler := NewMovementHandler(services.Movements, logger, cfg.Upload.MaxBytes)

	authMiddleware := AuthMiddleware(services.Auth)
	adminOnly := RoleMiddleware(domain.RoleAdmin)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/server-date", authHandler.ServerDate)
		authGroup.GET("/me", authMiddleware, authHandler.Me)
	}

	// --- Catalog reads are public ---
	apiV1.GET("/programs", programHandler.ListPrograms)
	apiV1.GET("/movements", movementHandler.ListMovements)
	apiV1.GET("/movements/:id", movementHandler.GetMovement)

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		userGroup := protected.Group("/users")
		{
			userGroup.GET("/stats", progressHandler.GetUserStats)
			userGroup.POST("/:programId/register", progressHandler.Enroll)
			userGroup.GET("/:programId/is-registered", progressHandler.IsRegistered)
			userGroup.PATCH("/complete-day", progressHandler.CompleteDay)
			userGroup.PATCH("/complete-day-default", progressHandler.CompleteRegisteredDay)
			userGroup.PATCH("/complete-user-created-day", progressHandler.CompleteUserCreatedDay)
			userGroup.PATCH("/:programId/complete", progressHandler.CompleteProgram)
			userGroup.GET("/:programId/progress", progressHandler.GetProgress)
			userGroup.DELETE("/programs/:programId", progressHandler.DeleteUserCreatedProgram)
		}

		programGroup := protected.Group("/programs")
		{
			programGroup.POST("", adminOnly, programHandler.CreateProgram)
			programGroup.POST("/user", programHandler.CreateUserProgram)
			programGroup.GET("/mine", programHandler.ListMine)
			programGroup.GET("/registered", programHandler.ListRegistered)
			programGroup.GET("/:id", programHandler.GetProgram)
		}

		protected.GET("/movements/:id/media/:index", movementHandler.MediaLink)

		movementGroup := protected.Group("/movements")
		movementGroup.Use(adminOnly)
		{
			movementGroup.POST("", movementHandler.CreateMovement)
			movementGroup.PUT("/:id", movementHandler.UpdateMovement)
			movementGroup.DELETE("/:id", movementHandler.DeleteMovement)
			movementGroup.POST("/:id/media", movementHandler.UploadMedia)
		}
	}
}
