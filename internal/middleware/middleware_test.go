package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/logger"
)

type stubAuthenticator struct {
	actors map[string]*models.Actor
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*models.Actor, error) {
	if actor, ok := s.actors[token]; ok {
		return actor, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newProtectedRouter(allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := stubAuthenticator{actors: map[string]*models.Actor{
		"admin":   {ID: "admin-1", Role: models.RoleAdmin},
		"student": {ID: "st-1", Role: models.RoleStudent},
	}}
	r := gin.New()
	r.GET("/students/:id", JWT(auth), RBAC(allowed...), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(logger.ActorKey))
	})
	return r
}

func request(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRequiresBearerToken(t *testing.T) {
	r := newProtectedRouter(string(models.RoleAdmin))

	assert.Equal(t, http.StatusUnauthorized, request(r, "/students/st-1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, "/students/st-1", "forged").Code)

	w := request(r, "/students/st-1", "admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-1", w.Body.String())
}

func TestRBACSelf(t *testing.T) {
	r := newProtectedRouter(string(models.RoleAdmin), Self)

	assert.Equal(t, http.StatusOK, request(r, "/students/st-1", "student").Code)
	assert.Equal(t, http.StatusForbidden, request(r, "/students/st-2", "student").Code)
	assert.Equal(t, http.StatusOK, request(r, "/students/st-2", "admin").Code)
}

func TestTimeoutBoundsRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	var deadline time.Time
	var ok bool
	r.GET("/", func(c *gin.Context) {
		deadline, ok = c.Request.Context().Deadline()
		c.Status(http.StatusNoContent)
	})

	request(r, "/", "")
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, time.Second)
}
