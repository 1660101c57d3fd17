package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type sessionRevoker interface {
	Revoke(ctx context.Context, sessionID string) error
}

// AuthHandler manages the session behind the caller's token.
type AuthHandler struct {
	tokens sessionRevoker
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// Logout godoc
// @Summary Expire the current session
// @Tags Auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.tokens.Revoke(c.Request.Context(), actor.SessionID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
