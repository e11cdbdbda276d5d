package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/spotlist/api-go/controllers"
)

func SetupUserRoutes(protected *gin.RouterGroup, userController *controllers.UserController) {
	protected.GET("/me", userController.GetMe)
}
