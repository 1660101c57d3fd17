package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/logger"
	"github.com/noah-isme/timetable-api/pkg/response"
)

// ContextActorKey is the gin context key storing the authenticated actor.
const ContextActorKey = "currentActor"

// Authenticator resolves a bearer token into a live actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Actor, error)
}

// JWT protects routes by requiring a valid access token backed by a live session.
func JWT(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		actor, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextActorKey, actor)
		c.Set(logger.ActorKey, actor.ID)
		c.Next()
	}
}

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(c *gin.Context) *models.Actor {
	value, exists := c.Get(ContextActorKey)
	if !exists {
		return nil
	}
	actor, ok := value.(*models.Actor)
	if !ok {
		return nil
	}
	return actor
}
