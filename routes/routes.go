package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"inkwell/handlers"
	"inkwell/middleware"
)

// SetupRouter assembles the full HTTP surface: CORS, the uniform error
// formatter, static uploads, and the user/post route groups.
func SetupRouter(clientOrigin, uploadsDir string) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{clientOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.ErrorHandler())

	// Uploaded images are served read-only by stored filename.
	router.Static("/uploads", uploadsDir)

	authLimiter := middleware.NewIPRateLimiter(30, time.Minute)

	users := router.Group("/api/users")
	{
		users.POST("/register", middleware.RateLimit(authLimiter), handlers.Register)
		users.POST("/login", middleware.RateLimit(authLimiter), handlers.Login)
		users.GET("", handlers.GetAuthors)
		users.GET("/:id", handlers.GetUser)
		users.POST("/change-avatar", middleware.JWTAuthMiddleware(), handlers.ChangeAvatar)
		users.PATCH("/edit-user", middleware.JWTAuthMiddleware(), handlers.EditUser)
	}

	posts := router.Group("/api/posts")
	{
		posts.POST("", middleware.JWTAuthMiddleware(), handlers.CreatePost)
		posts.GET("", handlers.GetPosts)
		posts.GET("/:id", handlers.GetPost)
		posts.PATCH("/:id", middleware.JWTAuthMiddleware(), handlers.EditPost)
		posts.DELETE("/:id", middleware.JWTAuthMiddleware(), handlers.DeletePost)
		// gin's router cannot mix static and wildcard segments at the same
		// level, so /categories/:category and /users/:id share the :id slot.
		posts.GET("/:id/:value", postCollections)
	}

	router.NoRoute(middleware.NotFound())

	return router
}

func postCollections(c *gin.Context) {
	switch c.Param("id") {
	case "categories":
		handlers.GetCatPosts(c)
	case "users":
		handlers.GetUserPosts(c)
	default:
		c.JSON(http.StatusNotFound, gin.H{"message": "Endpoint not found"})
	}
}
