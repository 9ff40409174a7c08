package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/carhire/internal/helpers"
	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/joshua-takyi/carhire/internal/services"
)

type createBookingRequest struct {
	CarID           string `json:"carId" binding:"required"`
	StartDate       string `json:"startDate" binding:"required"`
	EndDate         string `json:"endDate" binding:"required"`
	PickupLocation  string `json:"pickupLocation"`
	DropoffLocation string `json:"dropoffLocation"`
}

type updateBookingRequest struct {
	Status          *string `json:"status"`
	PickupLocation  *string `json:"pickupLocation"`
	DropoffLocation *string `json:"dropoffLocation"`
}

func CreateBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}

		var req createBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "missing required fields")
			return
		}
		carID, err := helpers.ParseObjectID(req.CarID)
		if err != nil {
			respondError(c, err)
			return
		}
		start, err := helpers.ParseDate(req.StartDate)
		if err != nil {
			respondError(c, err)
			return
		}
		end, err := helpers.ParseDate(req.EndDate)
		if err != nil {
			respondError(c, err)
			return
		}

		booking, err := b.CreateBooking(c.Request.Context(), userID, services.CreateBookingInput{
			CarID:           carID,
			StartDate:       start,
			EndDate:         end,
			PickupLocation:  req.PickupLocation,
			DropoffLocation: req.DropoffLocation,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(booking, "Booking created successfully"))
	}
}

func ListMyBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		p, ok := pagination(c)
		if !ok {
			return
		}

		bookings, total, err := b.ListUserBookings(c.Request.Context(), userID, p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(bookings, p.Normalize(models.DefaultPageLimit), total))
	}
}

func GetBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		bookingID, ok := paramID(c, "id")
		if !ok {
			return
		}

		booking, err := b.GetBooking(c.Request.Context(), bookingID, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, ""))
	}
}

func UpdateBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		bookingID, ok := paramID(c, "id")
		if !ok {
			return
		}

		var req updateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload")
			return
		}
		in := services.UpdateBookingInput{
			PickupLocation:  req.PickupLocation,
			DropoffLocation: req.DropoffLocation,
		}
		if req.Status != nil {
			status, err := models.ParseBookingStatus(*req.Status)
			if err != nil {
				respondError(c, err)
				return
			}
			in.Status = &status
		}

		booking, err := b.UpdateBooking(c.Request.Context(), bookingID, userID, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking updated successfully"))
	}
}

func CancelBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		bookingID, ok := paramID(c, "id")
		if !ok {
			return
		}

		booking, err := b.CancelBooking(c.Request.Context(), bookingID, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking cancelled successfully"))
	}
}

func AdminListBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := pagination(c)
		if !ok {
			return
		}
		q := models.BookingQuery{Pagination: p}
		if q.CarID, ok = queryID(c, "carId"); !ok {
			return
		}
		if q.UserID, ok = queryID(c, "userId"); !ok {
			return
		}
		if raw := c.Query("status"); raw != "" {
			status, err := models.ParseBookingStatus(raw)
			if err != nil {
				respondError(c, err)
				return
			}
			q.Status = &status
		}

		bookings, total, err := b.ListBookings(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(bookings, p.Normalize(models.DefaultPageLimit), total))
	}
}

func AdminSetBookingStatus(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "status is required")
			return
		}
		status, err := models.ParseBookingStatus(req.Status)
		if err != nil {
			respondError(c, err)
			return
		}

		booking, err := b.SetBookingStatus(c.Request.Context(), bookingID, status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking status updated"))
	}
}
