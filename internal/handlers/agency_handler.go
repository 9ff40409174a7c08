package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/joshua-takyi/carhire/internal/services"
)

func ListAgencies(as *services.AgencyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := pagination(c)
		if !ok {
			return
		}
		q := models.AgencyQuery{Pagination: p}
		if city := strings.TrimSpace(c.Query("city")); city != "" {
			q.City = &city
		}
		if country := strings.TrimSpace(c.Query("country")); country != "" {
			q.Country = &country
		}

		agencies, total, err := as.ListAgencies(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(agencies, p.Normalize(50), total))
	}
}

func CreateAgency(as *services.AgencyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var agency models.Agency
		if err := c.ShouldBindJSON(&agency); err != nil {
			badRequest(c, "invalid request payload")
			return
		}
		created, err := as.CreateAgency(c.Request.Context(), &agency)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Agency created successfully"))
	}
}
