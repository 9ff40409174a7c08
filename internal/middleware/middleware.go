package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/carhire/internal/helpers"
	"github.com/joshua-takyi/carhire/internal/models"
)

const (
	RequestIDKey = "request_id"
	UserKey      = "user"
	TokenCookie  = "access_token"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get(RequestIDKey)
		status := c.Writer.Status()
		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if claims, ok := ClaimsFrom(c); ok {
			attrs = append(attrs, "user_id", claims.UserID)
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP Request", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP Request", attrs...)
		default:
			logger.Info("HTTP Request", attrs...)
		}
	}
}

// ErrorHandler logs errors attached with c.Error and answers 500 when the
// handler did not write a response itself.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		requestID, _ := c.Get(RequestIDKey)

		logger.Error("Request error",
			"request_id", requestID,
			"error", err.Error(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse("internal server error"))
		}
	}
}

// AuthMiddleware accepts a Bearer token or the access_token cookie and stores
// the validated claims under UserKey.
func AuthMiddleware(validator *helpers.TokenValidator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if cookie, err := c.Cookie(TokenCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			requestID, _ := c.Get(RequestIDKey)
			logger.Info("rejected token", "request_id", requestID, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}
		if _, err := claims.ObjectID(); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		c.Set(UserKey, claims)
		c.Next()
	}
}

// RequireRoles must run after AuthMiddleware.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}
		if !claims.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse("forbidden"))
			return
		}
		c.Next()
	}
}

func ClaimsFrom(c *gin.Context) (*helpers.CustomClaims, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*helpers.CustomClaims)
	return claims, ok
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
