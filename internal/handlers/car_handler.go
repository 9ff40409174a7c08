package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/carhire/internal/helpers"
	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/joshua-takyi/carhire/internal/services"
)

type updateCarRequest struct {
	Make         *string  `json:"make"`
	Model        *string  `json:"model"`
	Year         *int     `json:"year"`
	Color        *string  `json:"color"`
	Mileage      *int     `json:"mileage"`
	Transmission *string  `json:"transmission"`
	FuelType     *string  `json:"fuelType"`
	Seats        *int     `json:"seats"`
	DailyRate    *float64 `json:"dailyRate"`
	Status       *string  `json:"status"`
	Description  *string  `json:"description"`
	ImageURL     *string  `json:"imageUrl"`
	AgencyID     *string  `json:"agencyId"`
	LicensePlate *string  `json:"licensePlate"`
}

func (r updateCarRequest) toUpdate() (models.CarUpdate, error) {
	upd := models.CarUpdate{
		Make:         helpers.StringTrim(r.Make),
		Model:        helpers.StringTrim(r.Model),
		Year:         r.Year,
		Color:        helpers.StringTrim(r.Color),
		Mileage:      r.Mileage,
		Transmission: r.Transmission,
		FuelType:     r.FuelType,
		Seats:        r.Seats,
		DailyRate:    r.DailyRate,
		Description:  helpers.StringTrim(r.Description),
		ImageURL:     helpers.StringTrim(r.ImageURL),
		LicensePlate: r.LicensePlate,
	}
	if r.Status != nil {
		status := models.CarStatus(*r.Status)
		upd.Status = &status
	}
	if r.AgencyID != nil {
		id, err := helpers.ParseObjectID(*r.AgencyID)
		if err != nil {
			return upd, err
		}
		upd.AgencyID = &id
	}
	return upd, nil
}

type listCarsFunc func(ctx context.Context, q models.CarQuery) ([]*models.CarView, int64, error)

func ListCars(cs *services.CarService) gin.HandlerFunc {
	return listCars(cs.ListCars)
}

// AdminListCars is ListCars with per-car booking and review counts.
func AdminListCars(cs *services.CarService) gin.HandlerFunc {
	return listCars(cs.AdminListCars)
}

func listCars(list listCarsFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := pagination(c)
		if !ok {
			return
		}
		q := models.CarQuery{Pagination: p}
		if q.AgencyID, ok = queryID(c, "agencyId"); !ok {
			return
		}
		if raw := c.Query("status"); raw != "" {
			status, err := models.ParseCarStatus(raw)
			if err != nil {
				respondError(c, err)
				return
			}
			q.Status = &status
		}

		cars, total, err := list(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(cars, p.Normalize(12), total))
	}
}

func GetCar(cs *services.CarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		car, err := cs.GetCar(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(car, ""))
	}
}

func CreateCar(cs *services.CarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var car models.Car
		if err := c.ShouldBindJSON(&car); err != nil {
			badRequest(c, "invalid request payload")
			return
		}
		created, err := cs.CreateCar(c.Request.Context(), &car)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Car created successfully"))
	}
}

func UpdateCar(cs *services.CarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req updateCarRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload")
			return
		}
		upd, err := req.toUpdate()
		if err != nil {
			respondError(c, err)
			return
		}
		car, err := cs.UpdateCar(c.Request.Context(), id, upd)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(car, "Car updated successfully"))
	}
}

func DeleteCar(cs *services.CarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := cs.DeleteCar(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Car deleted successfully"))
	}
}
