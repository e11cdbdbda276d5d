package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spotlist/api-go/services"
	"github.com/spotlist/api-go/utils"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// GetUsers lists users with their post count and subscription status.
// createdFrom and createdTo bound the creation time, and recent=true limits
// the listing to the last 30 days.
func (uc *UserController) GetUsers(c *gin.Context) {
	var (
		users []services.UserOverview
		err   error
	)
	actor := utils.GetActor(c)

	recent, err := queryBool(c, "recent")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if recent != nil && *recent {
		users, err = uc.users.ListRecentUsers(c.Request.Context(), actor)
	} else {
		var filter services.UserFilter
		if filter.CreatedFrom, err = queryDate(c, "createdFrom"); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		if filter.CreatedTo, err = queryDate(c, "createdTo"); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		users, err = uc.users.ListUsers(c.Request.Context(), actor, filter)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    users,
		Meta:    gin.H{"total": len(users)},
	})
}

// DeleteUser removes a user together with their posts and the reports on them.
func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := uc.users.Delete(c.Request.Context(), utils.GetActor(c), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "User deleted successfully"})
}

func (uc *UserController) GetMe(c *gin.Context) {
	actor := utils.GetActor(c)
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"id":    actor.ID,
			"kind":  actor.Kind,
			"email": actor.Email,
			"name":  actor.Name,
		},
	})
}
