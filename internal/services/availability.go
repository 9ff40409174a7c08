package services

import (
	"context"
	"time"

	"github.com/joshua-takyi/carhire/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AvailabilityChecker answers whether a car's dates are already held by a
// pending, confirmed or active booking.
type AvailabilityChecker struct {
	bookingsRepo models.BookingRepo
	boundary     models.BoundaryMode
}

func NewAvailabilityChecker(bookingsRepo models.BookingRepo, boundary models.BoundaryMode) *AvailabilityChecker {
	if boundary == "" {
		boundary = models.BoundaryInclusive
	}
	return &AvailabilityChecker{
		bookingsRepo: bookingsRepo,
		boundary:     boundary,
	}
}

// HasConflict expects the caller to have checked that the car exists.
func (ac *AvailabilityChecker) HasConflict(ctx context.Context, carID primitive.ObjectID, start, end time.Time) (bool, error) {
	r := models.DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return false, err
	}
	existing, err := ac.bookingsRepo.FindOverlappingBooking(ctx, carID, r, ac.boundary)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}
