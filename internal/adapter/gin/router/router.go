package router

import (
	"net/http"

	"user-account-service/internal/adapter/gin/handler"
	"user-account-service/internal/adapter/gin/middleware"
	"user-account-service/internal/usecase/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	tokens middleware.TokenVerifier,
	repo user.Repository,
	rateLimiter *middleware.RateLimiter,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware())
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "user-account-service",
		})
	})

	authenticated := middleware.Authentication(tokens, repo, log)

	// API v1 routes
	v1 := router.Group("/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("", userHandler.Register)
			users.POST("/login", userHandler.Login)

			users.GET("", authenticated, userHandler.ListUsers)
			users.GET("/profile", authenticated, userHandler.GetProfile)
			users.PATCH("/profile", authenticated, userHandler.UpdateProfile)
			users.DELETE("/profile", authenticated, userHandler.DeleteProfile)
			users.GET("/:id", authenticated, userHandler.GetUser)
		}
	}

	return router
}
