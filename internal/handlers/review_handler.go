package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/carhire/internal/middleware"
	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/joshua-takyi/carhire/internal/services"
)

type createReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func ListCarReviews(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		carID, ok := paramID(c, "id")
		if !ok {
			return
		}
		p, ok := pagination(c)
		if !ok {
			return
		}

		out, err := rs.ListCarReviews(c.Request.Context(), carID, p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(gin.H{
			"reviews": out.Reviews,
			"rating":  out.Rating,
		}, p.Normalize(models.DefaultPageLimit), out.Total))
	}
}

func CreateReview(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		carID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req createReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "rating is required")
			return
		}

		review, err := rs.CreateReview(c.Request.Context(), userID, carID, services.ReviewInput{
			Rating:  req.Rating,
			Comment: req.Comment,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(review, "review created"))
	}
}

func DeleteReview(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		claims, _ := middleware.ClaimsFrom(c)

		if err := rs.DeleteReview(c.Request.Context(), id, userID, claims.IsBackOffice()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "review deleted"))
	}
}
