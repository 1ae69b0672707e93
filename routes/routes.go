package routes

import (
	"net/http"

	"belajarbahasa/handlers"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	userHandler *handlers.UserHandler,
	answerHandler *handlers.AnswerHandler,
	feedHandler *handlers.FeedHandler,
) {
	handlers.RegisterValidators()

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Welcome to Belajar Bahasa API",
		})
	})

	// API routes
	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.GET("", userHandler.GetAllUsers)
			users.POST("", userHandler.CreateUser)
			users.POST("/login", userHandler.Login)
			users.GET("/language/:language", userHandler.GetUsersByLanguage)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.GET("/:id/answers", userHandler.GetUserAnswers)
		}

		answers := api.Group("/answer")
		{
			answers.POST("", answerHandler.CreateAnswer)
			answers.GET("", answerHandler.GetAllAnswers)
			answers.GET("/language/:language", answerHandler.GetAnswersByLanguage)
			answers.GET("/user/:userId", answerHandler.GetAnswersByUser)
			answers.GET("/session/:session", answerHandler.GetAnswersBySession)
			answers.GET("/:id", answerHandler.GetAnswerByID)
		}
	}

	// Live feed of newly stored answers for one user
	router.GET("/ws/answers/:userId", feedHandler.Subscribe)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Endpoint not found",
		})
	})
}
