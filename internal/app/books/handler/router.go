package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookreviews/pkg/logger"
	"bookreviews/pkg/metrics"
)

// SetupRoutes настраивает все маршруты сервиса с использованием Gin
// Чтение книг и отзывов публичное, мутации требуют JWT токен
func SetupRoutes(bookHandler *BookHandler, reviewHandler *ReviewHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("books-service"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "books-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	books := api.Group("/books")
	{
		books.GET("", bookHandler.GetBooks)
		books.GET("/search", bookHandler.SearchBooks)
		books.GET("/:id", bookHandler.GetBook)
		books.POST("", authMiddleware.Authenticate(), bookHandler.CreateBook)

		// Вложенные маршруты отзывов книги
		books.GET("/:id/reviews", reviewHandler.GetReviewsByBook)
		books.POST("/:id/reviews", authMiddleware.Authenticate(), reviewHandler.CreateReview)
	}

	reviews := api.Group("/reviews")
	reviews.Use(authMiddleware.Authenticate())
	{
		reviews.PUT("/:id", reviewHandler.UpdateReview)
		reviews.DELETE("/:id", reviewHandler.DeleteReview)
	}

	return router
}
