package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/joshua-takyi/carhire/internal/services"
)

// Profile returns the caller's account.
func Profile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		user, err := u.GetUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, ""))
	}
}

func AdminListUsers(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := pagination(c)
		if !ok {
			return
		}
		q := models.UserQuery{Pagination: p}
		if raw := c.Query("role"); raw != "" {
			role, err := models.ParseUserRole(raw)
			if err != nil {
				respondError(c, err)
				return
			}
			q.Role = &role
		}

		users, total, err := u.ListUsers(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(users, p.Normalize(models.DefaultPageLimit), total))
	}
}

type createUserRequest struct {
	registerRequest
	Role string `json:"role" binding:"required"`
}

// AdminCreateUser opens an account of any role, typically a STAFF login.
func AdminCreateUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload")
			return
		}

		user, err := u.CreateUser(c.Request.Context(), services.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Password: req.Password,
		}, models.UserRole(req.Role))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(user, "User created successfully"))
	}
}
