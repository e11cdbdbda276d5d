package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/spotlist/api-go/controllers"
)

func SetupPublicPostRoutes(public *gin.RouterGroup, postController *controllers.PostController) {
	posts := public.Group("/posts")
	{
		posts.GET("", postController.GetPosts)
		posts.GET("/:id", postController.GetPost)
	}
}

func SetupPostRoutes(protected *gin.RouterGroup, postController *controllers.PostController) {
	posts := protected.Group("/posts")
	{
		posts.POST("", postController.CreatePost)
		posts.GET("/mine", postController.GetMyPosts)
		posts.PUT("/:id", postController.UpdatePost)
		posts.DELETE("/:id", postController.DeletePost)
	}
}
