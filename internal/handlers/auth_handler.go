package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/carhire/internal/middleware"
	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/joshua-takyi/carhire/internal/services"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

// setAuthCookie mirrors the token into an HttpOnly cookie for browser clients.
func setAuthCookie(c *gin.Context, res *services.AuthResult, secure bool) {
	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, res.Token, maxAge, "/", "", secure, true)
}

func Register(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload")
			return
		}

		res, err := u.Register(c.Request.Context(), services.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Password: req.Password,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		setAuthCookie(c, res, secureCookies)
		c.JSON(http.StatusCreated, models.SuccessResponse(res, "Account created successfully"))
	}
}

func login(u *services.UserService, secureCookies bool, admin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload")
			return
		}

		var res *services.AuthResult
		var err error
		if admin {
			res, err = u.AdminLogin(c.Request.Context(), req.Email, req.Password)
		} else {
			res, err = u.Login(c.Request.Context(), req.Email, req.Password)
		}
		if err != nil {
			respondError(c, err)
			return
		}

		setAuthCookie(c, res, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(res, "Logged in successfully"))
	}
}

func Login(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return login(u, secureCookies, false)
}

// AdminLogin only admits ADMIN and STAFF accounts.
func AdminLogin(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return login(u, secureCookies, true)
}

// Logout handler
func Logout(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(middleware.TokenCookie, "", -1, "/", "", secureCookies, true)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}
