package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"amity/handlers"
	"amity/middleware"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080", "http://127.0.0.1:8080", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Public routes. Credential endpoints are rate limited per IP.
	credentials := router.Group("/")
	credentials.Use(middleware.RateLimit(20, time.Minute))
	credentials.POST("/users", handlers.Signup)
	credentials.POST("/login", handlers.Login)

	router.GET("/push/public-key", handlers.GetVapidPublicKey)

	// Everything below requires a valid token
	protected := router.Group("/")
	protected.Use(middleware.RequireAuth())

	// Users
	protected.GET("/users", handlers.ListUsers)
	protected.GET("/users/:username", handlers.ShowUser)
	protected.GET("/users/:username/friends", handlers.ShowFriends)
	protected.PUT("/users/:id", handlers.UpdateUser)
	protected.PUT("/users/:id/password", handlers.UpdatePassword)
	protected.DELETE("/users/:id", handlers.DeleteUser)

	// Friendship
	protected.PUT("/users/:id/add-friend", handlers.AddFriend)
	protected.PUT("/users/:id/remove-friend", handlers.RemoveFriend)
	protected.POST("/friend-requests/:receiver", handlers.CreateFriendRequest)
	protected.GET("/friend-requests", handlers.ListFriendRequests)
	protected.GET("/friend-requests/:id", handlers.ShowFriendRequest)
	protected.GET("/friend-requests/made/:author", handlers.ListMadeRequests)
	protected.GET("/friend-requests/received/:receiver", handlers.ListReceivedRequests)
	protected.DELETE("/friend-requests/:id", handlers.DestroyFriendRequest)

	// Posts
	protected.POST("/posts", handlers.CreatePost)
	protected.GET("/posts", handlers.ListPosts)
	protected.GET("/posts/:id", handlers.ShowPost)
	protected.GET("/posts/author/:username", handlers.ListPostsByAuthor)
	protected.PUT("/posts/:id", handlers.UpdatePost)
	protected.PUT("/posts/:id/like", handlers.LikePost)
	protected.DELETE("/posts/:id", handlers.DestroyPost)

	// Comments
	protected.POST("/comments", handlers.CreateComment)
	protected.GET("/comments", handlers.ListComments)
	protected.GET("/comments/:id", handlers.ShowComment)
	protected.PUT("/comments/:id", handlers.UpdateComment)
	protected.DELETE("/comments/:id", handlers.DestroyComment)

	// Media + push
	protected.POST("/media", handlers.UploadMedia)
	protected.POST("/push/subscribe", handlers.SubscribePush)

	return router
}
