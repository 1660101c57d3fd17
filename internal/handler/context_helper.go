package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/middleware"
)

// actorID returns the authenticated actor id, or "system" for unauthenticated callers.
func actorID(c *gin.Context) string {
	if actor := middleware.ActorFromContext(c); actor != nil {
		return actor.ID
	}
	return "system"
}
