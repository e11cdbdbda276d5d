package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/spotlist/api-go/services"
)

type contextKey string

const ActorContextKey contextKey = "actor"

func SetActor(c *gin.Context, actor *services.Actor) {
	c.Set(string(ActorContextKey), actor)
}

func GetActor(c *gin.Context) *services.Actor {
	actor, exists := c.Get(string(ActorContextKey))
	if !exists {
		return nil
	}
	if a, ok := actor.(*services.Actor); ok {
		return a
	}
	return nil
}
