package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/spotlist/api-go/controllers"
	"github.com/spotlist/api-go/middleware"
)

// Controllers groups the handlers mounted under /api.
type Controllers struct {
	Posts   *controllers.PostController
	Reports *controllers.ReportController
	Users   *controllers.UserController
}

func SetupRoutes(r *gin.Engine, ctrl Controllers, jwtSecret string, resolver middleware.ActorResolver) {
	// Public routes
	public := r.Group("/api")
	public.Use(middleware.OptionalAuth(jwtSecret, resolver))
	{
		SetupPublicPostRoutes(public, ctrl.Posts)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtSecret, resolver))
	{
		SetupPostRoutes(protected, ctrl.Posts)
		SetupReportRoutes(protected, ctrl.Reports)
		SetupUserRoutes(protected, ctrl.Users)
	}

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(jwtSecret, resolver), middleware.RequireAdmin())
	{
		SetupAdminRoutes(admin, ctrl)
	}
}

func SetupAdminRoutes(admin *gin.RouterGroup, ctrl Controllers) {
	posts := admin.Group("/posts")
	{
		posts.GET("", ctrl.Posts.GetAllPosts)
		posts.POST("/approve-all", ctrl.Posts.ApproveAllPosts)
		posts.POST("/:id/approve", ctrl.Posts.ApprovePost)
		posts.POST("/:id/deactivate", ctrl.Posts.DeactivatePost)
		posts.GET("/:id/reports", ctrl.Reports.GetPostReports)
	}

	reports := admin.Group("/reports")
	{
		reports.GET("", ctrl.Reports.GetAllReports)
		reports.PUT("/:id", ctrl.Reports.AdjudicateReport)
		reports.DELETE("", ctrl.Reports.DeleteReports)
	}

	users := admin.Group("/users")
	{
		users.GET("", ctrl.Users.GetUsers)
		users.DELETE("/:id", ctrl.Users.DeleteUser)
	}
}
