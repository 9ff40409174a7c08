package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/carhire/internal/helpers"
	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newAuthRouter(t *testing.T, roles ...models.UserRole) *gin.Engine {
	t.Helper()
	tv, err := helpers.NewTokenValidator(context.Background(), []byte("secret"), "")
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestID(), AuthMiddleware(tv, discard))
	if len(roles) > 0 {
		r.Use(RequireRoles(roles...))
	}
	r.GET("/me", func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.UserID)
	})
	return r
}

func issue(t *testing.T, role models.UserRole) (string, primitive.ObjectID) {
	t.Helper()
	id := primitive.NewObjectID()
	token, _, err := helpers.IssueToken([]byte("secret"), time.Hour, &models.User{ID: id, Role: role})
	require.NoError(t, err)
	return token, id
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter(t)
	token, id := issue(t, models.RoleUser)

	t.Run("bearer header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id.Hex(), w.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	r := newAuthRouter(t, models.RoleAdmin, models.RoleStaff)

	for role, want := range map[models.UserRole]int{
		models.RoleAdmin: http.StatusOK,
		models.RoleStaff: http.StatusOK,
		models.RoleUser:  http.StatusForbidden,
	} {
		token, _ := issue(t, role)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(discard))
	r.GET("/silent", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})
	r.GET("/answered", func(c *gin.Context) {
		_ = c.Error(errors.New("conflict"))
		c.JSON(http.StatusBadRequest, models.ErrorResponse("dates unavailable"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/silent", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/answered", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "dates unavailable")
}

func TestRequestID_PropagatesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}
