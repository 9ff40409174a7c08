package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/joshua-takyi/carhire/internal/services"
)

func ListFavourites(fs *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		cars, err := fs.ListFavouriteCars(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(cars, ""))
	}
}

func AddFavourite(fs *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		carID, ok := paramID(c, "carId")
		if !ok {
			return
		}
		if err := fs.AddFavouriteCar(c.Request.Context(), userID, carID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "car saved"))
	}
}

func RemoveFavourite(fs *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		carID, ok := paramID(c, "carId")
		if !ok {
			return
		}
		if err := fs.RemoveFavouriteCar(c.Request.Context(), userID, carID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "car removed"))
	}
}
